package iostore

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/tschart/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintStoreStatus prints metric store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Series: %s\n", humanize.Comma(int64(status.SeriesCount)))
	_, _ = fmt.Fprintf(w, "Points: %s\n", humanize.Comma(int64(status.PointCount)))
	if status.PointCount > 0 {
		_, _ = fmt.Fprintf(w, "Oldest Point: %s\n", status.OldestPoint.UTC().Format(statusTimeLayout))
		_, _ = fmt.Fprintf(w, "Newest Point: %s\n", status.NewestPoint.UTC().Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(w, "Dynamic Configs: %s\n", humanize.Comma(int64(status.ConfigCount)))
	if status.SchemaVersion > 0 {
		_, _ = fmt.Fprintf(w, "Schema Version: %d (dirty: %t)\n", status.SchemaVersion, status.Dirty)
	}
}

// PrintCacheStatus prints fetch cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %s\n", humanize.Comma(int64(status.TotalEntries)))
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s (%s)\n", status.LastEntryTime.UTC().Format(statusTimeLayout), humanize.Time(status.LastEntryTime))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.UTC().Format(statusTimeLayout))
	}
}
