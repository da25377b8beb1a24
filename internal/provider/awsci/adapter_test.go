package awsci_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/provider/awsci"
)

// fakeAWS answers AWS JSON 1.1 requests keyed by their X-Amz-Target header.
type fakeAWS struct {
	mu       sync.Mutex
	handlers map[string]func(body map[string]any) (int, any)
	requests map[string][]map[string]any
}

func newFakeAWS(t *testing.T, handlers map[string]func(body map[string]any) (int, any)) (*fakeAWS, *httptest.Server) {
	t.Helper()
	f := &fakeAWS{handlers: handlers, requests: map[string][]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.Header.Get("X-Amz-Target")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.requests[target] = append(f.requests[target], body)
		handler, ok := f.handlers[target]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"__type": "UnknownOperationException"})
			return
		}
		status, resp := handler(body)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAWS) lastRequest(target string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[target]
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

func testConfig() aws.Config {
	return aws.Config{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
}

func TestAdapter_PipelineState_MapsStageStates(t *testing.T) {
	_, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"CodePipeline_20150709.GetPipelineState": func(body map[string]any) (int, any) {
			return http.StatusOK, map[string]any{
				"pipelineName":    "deploy-api",
				"pipelineVersion": 3,
				"stageStates": []map[string]any{
					{"stageName": "Source", "latestExecution": map[string]any{
						"pipelineExecutionId": "abc123-xyz-1", "status": "Succeeded"}},
					{"stageName": "Build", "latestExecution": map[string]any{
						"pipelineExecutionId": "abc123-xyz-1", "status": "Failed"}},
					{"stageName": "Deploy"},
				},
			}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	state, err := adapter.PipelineState(context.Background(), "deploy-api")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.PipelineName != "deploy-api" || state.PipelineVersion != 3 {
		t.Errorf("unexpected pipeline fields: %+v", state)
	}
	if len(state.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(state.Stages))
	}
	if state.Stages[1].LatestExecution.Status != "Failed" {
		t.Errorf("expected second stage 'Failed', got '%s'", state.Stages[1].LatestExecution.Status)
	}
	if state.Stages[2].LatestExecution != nil {
		t.Error("expected never-run stage to have no latest execution")
	}
}

func TestAdapter_PipelineDefinition_MapsActionConfiguration(t *testing.T) {
	fake, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"CodePipeline_20150709.GetPipeline": func(body map[string]any) (int, any) {
			return http.StatusOK, map[string]any{
				"pipeline": map[string]any{
					"name":    "deploy-api",
					"roleArn": "arn:aws:iam::123456789012:role/pipeline",
					"stages": []map[string]any{
						{"name": "Source", "actions": []map[string]any{
							{"name": "Checkout", "configuration": map[string]string{"RepositoryName": "api"}},
						}},
						{"name": "Build", "actions": []map[string]any{
							{"name": "Unit", "configuration": map[string]string{"ProjectName": "api-unit"}},
						}},
					},
				},
			}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	def, err := adapter.PipelineDefinition(context.Background(), "deploy-api")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(def.Stages) != 2 || def.Stages[1].Name != "Build" {
		t.Fatalf("unexpected stages: %+v", def.Stages)
	}
	if got := def.Stages[1].Actions[0].Configuration["ProjectName"]; got != "api-unit" {
		t.Errorf("expected ProjectName 'api-unit', got '%s'", got)
	}
	if req := fake.lastRequest("CodePipeline_20150709.GetPipeline"); req["name"] != "deploy-api" {
		t.Errorf("expected request for 'deploy-api', got %v", req)
	}
}

func TestAdapter_ListBuildIDs_RequestsDescendingOrder(t *testing.T) {
	fake, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"CodeBuild_20161006.ListBuildsForProject": func(body map[string]any) (int, any) {
			return http.StatusOK, map[string]any{"ids": []string{"api-unit:new", "api-unit:old"}}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	ids, err := adapter.ListBuildIDs(context.Background(), "api-unit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "api-unit:new" {
		t.Errorf("unexpected ids: %v", ids)
	}
	req := fake.lastRequest("CodeBuild_20161006.ListBuildsForProject")
	if req["projectName"] != "api-unit" || req["sortOrder"] != "DESCENDING" {
		t.Errorf("unexpected request body: %v", req)
	}
}

func TestAdapter_LogEvents_ReturnsMessagesAndToken(t *testing.T) {
	fake, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"Logs_20140328.GetLogEvents": func(body map[string]any) (int, any) {
			return http.StatusOK, map[string]any{
				"events": []map[string]any{
					{"timestamp": 1700000000000, "ingestionTime": 1700000000001, "message": "foo"},
					{"timestamp": 1700000000002, "ingestionTime": 1700000000003, "message": "bar"},
				},
				"nextForwardToken":  "f/123",
				"nextBackwardToken": "b/122",
			}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	page, err := adapter.LogEvents(context.Background(), domain.LogEventsQuery{
		Stream: domain.LogStreamRef{Group: "/aws/codebuild/api-unit", Stream: "new"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Messages) != 2 || page.Messages[0] != "foo" || page.Messages[1] != "bar" {
		t.Errorf("unexpected messages: %v", page.Messages)
	}
	if page.NextForwardToken != "f/123" {
		t.Errorf("expected token 'f/123', got '%s'", page.NextForwardToken)
	}
	req := fake.lastRequest("Logs_20140328.GetLogEvents")
	if req["logGroupName"] != "/aws/codebuild/api-unit" || req["logStreamName"] != "new" {
		t.Errorf("unexpected request body: %v", req)
	}
	if _, ok := req["startFromHead"]; ok {
		t.Errorf("expected startFromHead to be omitted for a single-page read, got %v", req)
	}
	if _, ok := req["nextToken"]; ok {
		t.Errorf("expected no nextToken on the first read, got %v", req)
	}
}

func TestAdapter_LogEvents_PagedQuerySendsHeadAndToken(t *testing.T) {
	fake, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"Logs_20140328.GetLogEvents": func(body map[string]any) (int, any) {
			return http.StatusOK, map[string]any{"events": []map[string]any{}, "nextForwardToken": "f/2"}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	_, err := adapter.LogEvents(context.Background(), domain.LogEventsQuery{
		Stream:    domain.LogStreamRef{Group: "/aws/codebuild/b", Stream: "s"},
		FromHead:  true,
		NextToken: "f/1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := fake.lastRequest("Logs_20140328.GetLogEvents")
	if req["startFromHead"] != true || req["nextToken"] != "f/1" {
		t.Errorf("unexpected request body: %v", req)
	}
}

func TestAdapter_LogEvents_MissingStreamIsTyped(t *testing.T) {
	_, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"Logs_20140328.GetLogEvents": func(body map[string]any) (int, any) {
			return http.StatusBadRequest, map[string]any{
				"__type":  "ResourceNotFoundException",
				"message": "The specified log stream does not exist.",
			}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	_, err := adapter.LogEvents(context.Background(), domain.LogEventsQuery{
		Stream: domain.LogStreamRef{Group: "/aws/codebuild/b", Stream: "gone"},
	})
	var notFound *domain.LogStreamNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected LogStreamNotFoundError, got %T %v", err, err)
	}
	if notFound.Stream != "gone" {
		t.Errorf("expected stream 'gone', got '%s'", notFound.Stream)
	}
}

func TestAdapter_PipelineState_PassesThroughServiceErrors(t *testing.T) {
	_, srv := newFakeAWS(t, map[string]func(map[string]any) (int, any){
		"CodePipeline_20150709.GetPipelineState": func(body map[string]any) (int, any) {
			return http.StatusBadRequest, map[string]any{
				"__type":  "PipelineNotFoundException",
				"message": "pipeline not found",
			}
		},
	})
	adapter := awsci.NewAdapter(awsci.NewClients(testConfig(), srv.URL))

	_, err := adapter.PipelineState(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var notFound *domain.LogStreamNotFoundError
	if errors.As(err, &notFound) {
		t.Error("pipeline errors must not be reported as missing log streams")
	}
}
