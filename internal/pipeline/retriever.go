package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/logging"
)

// Retriever reads the log transcript of a single build.
type Retriever struct {
	logs     domain.LogStore
	maxPages int
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. maxPages caps how many pages of events are
// read per stream; values below 1 mean a single page.
func NewRetriever(logs domain.LogStore, maxPages int, logger *slog.Logger) *Retriever {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Retriever{logs: logs, maxPages: maxPages, logger: logging.OrNop(logger)}
}

// Transcript fetches the events of the build's log stream and concatenates
// their messages with no separator, in store order.
//
// With the default single page the store returns its most recent page, so very
// long builds show only their tail. A higher page cap reads from the head of
// the stream and follows forward tokens up to the cap.
func (r *Retriever) Transcript(ctx context.Context, locator domain.LogLocator) (string, error) {
	ref, err := domain.ParseLogLocator(locator)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	token := ""
	for page := 0; page < r.maxPages; page++ {
		events, err := r.logs.LogEvents(ctx, domain.LogEventsQuery{
			Stream:    ref,
			FromHead:  r.maxPages > 1,
			NextToken: token,
		})
		if err != nil {
			return "", upstream(domain.ServiceLogStore, "GetLogEvents", ref.Group+"/"+ref.Stream, err)
		}
		for _, msg := range events.Messages {
			sb.WriteString(msg)
		}
		r.logger.Debug("fetched log events",
			"group", ref.Group, "stream", ref.Stream, "page", page, "events", len(events.Messages))
		// CloudWatch hands back the same forward token once the end is reached.
		if events.NextForwardToken == "" || events.NextForwardToken == token {
			break
		}
		token = events.NextForwardToken
	}
	return sb.String(), nil
}

// AssembleReport joins per-build transcripts with a single newline, keeping
// their order.
func AssembleReport(transcripts []string) string {
	return strings.Join(transcripts, "\n")
}
