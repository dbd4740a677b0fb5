// Gmail newsletter server composes and sends HTML email campaigns through
// a connected Gmail account, operated over Model Context Protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-newsletter/internal/auth"
	"github.com/hal9000y/gmail-newsletter/internal/campaign"
	"github.com/hal9000y/gmail-newsletter/internal/config"
	"github.com/hal9000y/gmail-newsletter/internal/gservice"
	"github.com/hal9000y/gmail-newsletter/internal/storage/sqlstore"
	"github.com/hal9000y/gmail-newsletter/internal/tool"
)

func main() {
	httpAddr := flag.String("http-addr", "localhost:8080", "HTTP server listen addr")
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables stdout logging)")
	logFile := flag.String("log-file", "", "Path to log file (otherwise logs to stdout, or nowhere with -stdio)")

	flag.Parse()

	closeLogs := setupLogger(*enableStdio, *logFile)
	defer closeLogs()

	cfg, err := config.Load(*envFileParam)
	if err != nil {
		panic(fmt.Errorf("config.Load failed: %w", err))
	}

	ln := mustListen(*httpAddr)
	oauthCfg := cfg.OAuth(ln.Addr().String())

	tokens, err := auth.NewStore(oauthCfg, cfg.TokenFile)
	if err != nil {
		panic(fmt.Errorf("auth.NewStore failed: %w", err))
	}
	gate := auth.NewGate(tokens, gmail.GmailSendScope)

	ctx := context.Background()

	store, err := sqlstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Errorf("sqlstore.Open failed: %w", err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("store.Close failed", "err", err)
		}
	}()
	slog.Info("storage ready", "dialect", store.Dialect())

	resolver := campaign.NewResolver(store)
	records := campaign.NewRecords(store)
	engine := campaign.NewEngine(resolver, records, gate, gservice.NewGmail(oauthCfg))

	server := tool.NewServer(tool.Services{
		Contacts:   store,
		Records:    records,
		Resolver:   resolver,
		Engine:     engine,
		Gate:       gate,
		ConnectURL: oauthCfg.RedirectURL + "?redirect=1",
	})

	authHTTP := auth.NewHTTPHandler(tokens)

	mux := http.NewServeMux()
	mux.Handle("/oauth", authHTTP)
	mux.Handle("/oauth/disconnect", authHTTP.Disconnect())
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return server }, nil))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	if !gate.IsReady(ctx) {
		openBrowser(oauthCfg.RedirectURL)
	}

	stopHTTP, errHTTPCh := serveHTTP(srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(server)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		slog.Error("http server failed", "err", err)
	case err := <-errStdioCh:
		slog.Error("stdio transport failed", "err", err)
	case <-shutdown:
		slog.Info("shutdown signal received")
	}
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		slog.Info("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		slog.Info("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		slog.Info("starting http server", "addr", ln.Addr().String())

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("srv.Shutdown failed", "err", err)
		}

		<-errHTTPCh
		slog.Info("http server stopped")
	}, errHTTPCh
}

func mustListen(httpAddr string) net.Listener {
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

// setupLogger installs the default slog logger. Stdio mode owns stdout, so
// logs go to the log file or are discarded.
func setupLogger(enableStdio bool, logFile string) func() {
	var w io.Writer = os.Stdout
	closeFn := func() {}

	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case enableStdio:
		w = io.Discard
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, nil)))

	return closeFn
}

func openBrowser(url string) {
	url = fmt.Sprintf("%s?redirect=1", url)
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		slog.Warn("could not open browser automatically, open the link manually", "err", err, "url", url)
	}
}
