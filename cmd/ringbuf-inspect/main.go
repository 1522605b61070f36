// Command ringbuf-inspect opens a named ring read-only and prints its
// debug state, without disturbing any consumer's cursor. Adapted from the
// teacher's cmd/debug-capacity diagnostic, narrowed to this ring's
// discovery/buffer/info model instead of the gRPC transport's dueling-buffer
// capacity probe.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringconsumer"
	"github.com/avijeet-zanskar/ring-buffer-exanic-like/ringrecord"
)

func main() {
	name := flag.String("ring", "", "name of the ring to inspect")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "ringbuf-inspect: -ring is required")
		os.Exit(2)
	}

	c, err := ringconsumer.Open[ringrecord.Snapshot](*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ringbuf-inspect: failed to open ring %q: %v\n", *name, err)
		os.Exit(1)
	}
	defer c.Close()

	state := c.DebugState()
	fmt.Printf("ring:          %s\n", state.Name)
	fmt.Printf("capacity:      %d\n", state.Capacity)
	fmt.Printf("payload size:  %d bytes\n", state.PayloadSize)
	fmt.Printf("huge pages:    %t\n", state.HugePages)
	fmt.Printf("last_block_id: %d\n", state.LastBlockID)

	c.Catchup()
	cur := c.Cursor()
	fmt.Printf("catchup cursor: id=%d version=%d prev_id=%d prev_version=%d\n",
		cur.ID, cur.Version, cur.PrevID, cur.PrevVersion)
}
