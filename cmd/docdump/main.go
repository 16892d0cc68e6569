package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/docdex/docdex-mcp/internal/refdoc"
	"github.com/docdex/docdex-mcp/pkg/types"
)

// sampleReference is the built-in document used when no path is given
const sampleReference = `Scripting API Reference
Generated by docgen. Do not edit by hand.

== API INDEX ==
Widget
clamp
MAX_WIDGETS
== END INDEX ==

.. class:: Widget
   """
   Widget
   ======
   Base element for all on-screen controls.

   Properties:
      size

   Functions:
      resize

   """

   .. attribute:: size
      size = 0
      :type: Integer
      Current extent of the widget in pixels.

   .. method:: resize(width, height = 0)
      """
      resize(width: Integer, height: Integer = 0)
      Change the widget extent.
      :param width: new horizontal extent
      :rtype: Boolean
      """

.. function:: clamp(value, lo, hi)
   """
   clamp(value, lo, hi)
   Clamp value into the closed range [lo, hi].
   :rtype: Float
   """

.. data:: MAX_WIDGETS
   MAX_WIDGETS = 4096
   Upper bound of live widgets per scene.
`

func main() {
	fmt.Println("Dumping parsed reference records...")

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// Fall back to a built-in sample when no document is given
	if path == "" {
		tmpDir, err := os.MkdirTemp("", "docdex-dump-*")
		if err != nil {
			log.Fatalf("Failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(tmpDir)

		path = filepath.Join(tmpDir, "api_reference.txt")
		if err := os.WriteFile(path, []byte(sampleReference), 0644); err != nil {
			log.Fatalf("Failed to write sample document: %v", err)
		}
		fmt.Println("No document given, using built-in sample")
	}

	src, err := refdoc.OpenFile(path)
	if err != nil {
		log.Fatalf("Failed to open reference document: %v", err)
	}

	ctx := context.Background()
	acc, err := refdoc.New(ctx, src, refdoc.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to build accessor: %v", err)
	}

	status := acc.Status()
	fmt.Printf("\nIndex:\n")
	fmt.Printf("  Document Lines: %d\n", status.DocumentLines)
	fmt.Printf("  Classes: %d\n", status.Classes)
	fmt.Printf("  Functions: %d\n", status.Functions)
	fmt.Printf("  Constants: %d\n", status.Constants)
	if status.IndexDegraded {
		fmt.Printf("  Degraded: %s\n", status.DegradedReason)
	}

	failures := 0
	idx := acc.Index()

	for _, name := range idx.Names(types.KindClass) {
		rec, err := acc.GetClass(ctx, name)
		if err != nil {
			fmt.Printf("\nclass %s: %v\n", name, err)
			failures++
			continue
		}
		dump("class", name, rec)

		// Members come from the overview's own name lists
		for _, prop := range rec.Properties {
			p, err := acc.GetProperty(ctx, name, prop)
			if err != nil {
				fmt.Printf("\nproperty %s.%s: %v\n", name, prop, err)
				failures++
				continue
			}
			dump("property", name+"."+prop, p)
		}
		for _, meth := range rec.Methods {
			m, err := acc.GetMethod(ctx, name, meth)
			if err != nil {
				fmt.Printf("\nmethod %s.%s: %v\n", name, meth, err)
				failures++
				continue
			}
			dump("method", name+"."+meth, m)
		}
	}

	for _, name := range idx.Names(types.KindFunction) {
		rec, err := acc.GetFunction(ctx, name)
		if err != nil {
			fmt.Printf("\nfunction %s: %v\n", name, err)
			failures++
			continue
		}
		dump("function", name, rec)
	}

	for _, name := range idx.Names(types.KindConstant) {
		rec, err := acc.GetConstant(ctx, name)
		if err != nil {
			fmt.Printf("\nconstant %s: %v\n", name, err)
			failures++
			continue
		}
		dump("constant", name, rec)
	}

	status = acc.Status()
	fmt.Printf("\nCache:\n")
	fmt.Printf("  Cached Records: %d\n", status.CachedRecords)
	fmt.Printf("  Parse Count: %d\n", status.ParseCount)

	// Re-reading every class must be served from the cache
	before := status.ParseCount
	for _, name := range idx.Names(types.KindClass) {
		if _, err := acc.GetClass(ctx, name); err != nil {
			failures++
		}
	}
	after := acc.Status().ParseCount

	fmt.Printf("\nVerification:\n")
	fmt.Printf("  Parses before re-read: %d\n", before)
	fmt.Printf("  Parses after re-read: %d\n", after)

	if failures == 0 && before == after {
		fmt.Println("\n✓ SUCCESS: All cataloged symbols parsed, repeats served from cache!")
	} else {
		fmt.Printf("\n✗ FAILURE: %d lookups failed, %d uncached recomputes\n", failures, after-before)
		os.Exit(1)
	}
}

// dump prints one record as indented JSON under a kind header
func dump(kind, name string, rec interface{}) {
	data, err := json.MarshalIndent(rec, "  ", "  ")
	if err != nil {
		fmt.Printf("\n%s %s: marshal failed: %v\n", kind, name, err)
		return
	}
	fmt.Printf("\n%s %s:\n  %s\n", kind, name, data)
}
