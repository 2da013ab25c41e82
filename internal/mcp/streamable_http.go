package mcp

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/just-cli/just/internal/config"
	"github.com/just-cli/just/internal/errors"
	"github.com/just-cli/just/internal/secret"
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"

	DefaultHTTPAddr = "127.0.0.1:8787"
)

const (
	authHeader    = "Authorization"
	bearerPrefix  = "Bearer "
	unauthorized  = "unauthorized"
	headerMissing = "authorization header is required"
)

// ServerOptions 是 mcp server 的最终运行参数。
type ServerOptions struct {
	Transport string
	HTTPAddr  string
	AuthToken string
}

// ServerOverrides 来自 CLI/ENV；空字符串表示未设置。
type ServerOverrides struct {
	Transport string
	HTTPAddr  string
	AuthToken string
}

// ResolveServerOptions 合并 CLI/ENV 覆盖与配置文件：覆盖 > mcp.* > 默认值。
// 配置中的 auth_token 按 secret 规则解析。
func ResolveServerOptions(o ServerOverrides, cfg config.MCP, kr secret.KeyringAPI) (ServerOptions, *errors.XError) {
	transport := firstNonEmpty(o.Transport, cfg.Transport, TransportStdio)
	if transport != TransportStdio && transport != TransportStreamableHTTP {
		return ServerOptions{}, errors.New(errors.CodeCfgInvalid, "invalid mcp transport", map[string]any{"transport": transport})
	}

	token := o.AuthToken
	if token == "" && cfg.HTTP.AuthToken != "" {
		v, xe := secret.Resolve(cfg.HTTP.AuthToken, secret.Options{AllowPlaintext: cfg.HTTP.AllowPlaintextToken, Keyring: kr})
		if xe != nil {
			return ServerOptions{}, xe
		}
		token = v
	}
	if transport == TransportStreamableHTTP && token == "" {
		return ServerOptions{}, errors.New(errors.CodeCfgInvalid, "streamable http transport requires auth token", nil)
	}

	return ServerOptions{
		Transport: transport,
		HTTPAddr:  firstNonEmpty(o.HTTPAddr, cfg.HTTP.Addr, DefaultHTTPAddr),
		AuthToken: token,
	}, nil
}

// Serve 按 transport 运行 server，直到 ctx 取消或传输结束。
func Serve(ctx context.Context, server *mcp.Server, opts ServerOptions) error {
	switch opts.Transport {
	case TransportStdio:
		return server.Run(ctx, &mcp.StdioTransport{})
	case TransportStreamableHTTP:
		handler, err := NewStreamableHTTPHandler(server, opts.AuthToken)
		if err != nil {
			return err
		}
		httpServer := &http.Server{Addr: opts.HTTPAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(errors.CodeInternal, "mcp http server failed", map[string]any{"addr": opts.HTTPAddr}, err)
		}
		return nil
	default:
		return errors.New(errors.CodeCfgInvalid, "unsupported mcp transport", map[string]any{"transport": opts.Transport})
	}
}

// NewStreamableHTTPHandler creates a streamable HTTP handler with required auth.
func NewStreamableHTTPHandler(server *mcp.Server, authToken string) (http.Handler, error) {
	if server == nil {
		return nil, errors.New(errors.CodeInternal, "mcp server is nil", nil)
	}
	if authToken == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "mcp streamable http auth token is required", nil)
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
	return requireAuth(handler, authToken), nil
}

func requireAuth(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		auth := strings.TrimSpace(req.Header.Get(authHeader))
		if auth == "" {
			http.Error(w, headerMissing, http.StatusUnauthorized)
			return
		}
		received, ok := strings.CutPrefix(auth, bearerPrefix)
		if !ok || subtle.ConstantTimeCompare([]byte(received), []byte(token)) != 1 {
			http.Error(w, unauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
