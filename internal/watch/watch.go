// Package watch streams published-assignment events to a writer.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/store"
)

// OutputFormat selects how events are rendered.
type OutputFormat string

const (
	// OutputFormatDefault is one human-readable line per event.
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON is line-delimited JSON.
	OutputFormatJSON OutputFormat = "json"
)

// Stream writes events from sub to w until ctx is done, the subscription
// ends, or limit events have been written. A limit of 0 means no limit.
// Malformed messages are reported as warnings and skipped.
func Stream(ctx context.Context, sub *store.Subscription, format OutputFormat, w io.Writer, limit int) error {
	written := 0
	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			printer.Warning("%v\n", err)

		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := writeEvent(w, format, event); err != nil {
				return err
			}
			written++
			if limit > 0 && written >= limit {
				return nil
			}
		}
	}
}

func writeEvent(w io.Writer, format OutputFormat, event *store.SaveEvent) error {
	if format == OutputFormatJSON {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event to JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	ts := time.UnixMilli(event.Timestamp).Format("15:04:05")
	_, err := fmt.Fprintf(w, "[%s] 📦 run %s published %d item(s) in %d tier(s)\n",
		ts, event.RunID, event.Items, event.Tiers)
	return err
}
