// Package html2pdf converts HTML documents to PDF by driving an external
// rendering engine (Prince by default) as a subprocess.
//
// # Quick Start
//
// Create a service and convert a document:
//
//	svc := html2pdf.New()
//
//	pdf, err := svc.Convert(ctx, html2pdf.Input{
//	    HTML: "<!DOCTYPE html><html><body><h1>Hi</h1></body></html>",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.pdf", pdf, 0644)
//
// # Conversion Pipeline
//
// Each Convert call runs a fixed sequence:
//
//  1. Payload size gate (default 16 MiB)
//  2. Heuristic HTML validation (document-root prefix check)
//  3. Scratch workspace creation (temp input/output file pair)
//  4. Engine invocation with a wall-clock timeout
//  5. Artifact read-back and unconditional workspace cleanup
//
// Failures are classified as sentinel errors (ErrInvalidHTML,
// ErrRenderTimeout, ErrEngineUnavailable, ...) and matched with errors.Is.
// The workspace is removed on every exit path; no temp files survive a
// call, whatever its outcome.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := html2pdf.New(
//	    html2pdf.WithTimeout(60*time.Second),
//	    html2pdf.WithMaxPayload(32<<20),
//	    html2pdf.WithMaxConcurrent(8),
//	)
//
// WithMaxConcurrent bounds the number of live engine processes; the
// default (0) spawns one per request with no global limit.
//
// # Engine Requirements
//
// The engine binary must accept an input path plus "-o <output path>" and
// must exit zero on "--version" for the reachability probe. Prince follows
// this contract; weasyprint and comparable CLIs can be substituted via
// configuration. The engine is always invoked as a child process; nothing
// is rendered in-process.
package html2pdf
