// Package stdio implements the single-connection line transport: one JSON
// object per newline-terminated line on stdin and stdout. It is intended for
// servers embedded as subprocesses of a caller that spawns one process per
// call.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Auth             : none (OS user is logged for diagnostics)
//	Concurrency      : one request in flight; strictly read, dispatch, answer
//	Lifecycle        : uninitialized -> ready -> terminated (advisory)
//
// The handler answers initialize and shutdown itself and hands every other
// method to an mcpservice.Server. shutdown is acknowledged with {"ok":true}
// but does not stop the loop; the process ends when its input closes.
//
// Example:
//
//	srv, err := mcpservice.NewServer(
//	    mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: "my-stdio-server", Version: "0.1.0"}),
//	    mcpservice.WithCapability(tools),
//	)
//	if err != nil { log.Fatal(err) }
//	h := stdio.NewHandler(srv, stdio.WithBanner(stdio.BannerDiagnostic, "my-stdio-server ready"))
//	if err := h.Serve(ctx); err != nil { log.Fatal(err) }
package stdio
