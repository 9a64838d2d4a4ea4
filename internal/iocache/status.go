package iocache

import (
	"fmt"

	"github.com/burstline/burstline/schema"
)

// PrintStoreStatus prints status information for a cache or run store.
func PrintStoreStatus(label string, status schema.StoreStatus) {
	fmt.Printf("%s Backend: %s\n", label, status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		if status.NewestEntry != nil {
			fmt.Printf("Newest Entry: %s\n", status.NewestEntry.Format("2006-01-02 15:04:05"))
		}
		if status.OldestEntry != nil {
			fmt.Printf("Oldest Entry: %s\n", status.OldestEntry.Format("2006-01-02 15:04:05"))
		}
	}
}
