package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// CallbackAddr is where Last.fm redirects the browser after authorization.
const CallbackAddr = "localhost:9847"

const loginTimeout = 5 * time.Minute

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>reyvr - Last.fm</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`

// callbackServer receives the authorized token from the browser redirect.
type callbackServer struct {
	server *http.Server
	tokens chan string
	done   chan struct{}
}

func startCallbackServer(addr string) (*callbackServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	cs := &callbackServer{
		tokens: make(chan string, 1),
		done:   make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", cs.handle)
	cs.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		_ = cs.server.Serve(ln)
		close(cs.done)
	}()
	return cs, nil
}

func (cs *callbackServer) handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	w.Header().Set("Content-Type", "text/html")
	if token == "" {
		fmt.Fprintf(w, callbackPage, "Authorization Failed", "No token received. Please try again.")
		return
	}
	fmt.Fprintf(w, callbackPage, "Authorization Successful", "You can close this window and return to reyvr.")

	select {
	case cs.tokens <- token:
	default:
	}
}

func (cs *callbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = cs.server.Shutdown(ctx)
	<-cs.done
}

// Login runs the desktop authorization flow and returns the Last.fm user
// name and a session key for the config file. Instructions go to out.
func Login(ctx context.Context, c *Client, out io.Writer) (username, sessionKey string, err error) {
	cs, err := startCallbackServer(CallbackAddr)
	if err != nil {
		return "", "", err
	}
	defer cs.shutdown()

	token, err := c.GetToken()
	if err != nil {
		return "", "", err
	}
	authURL := c.AuthURL(token, "http://"+CallbackAddr+"/callback")
	fmt.Fprintf(out, "Authorize reyvr in your browser:\n  %s\n", authURL)
	if err := openBrowser(authURL); err != nil {
		fmt.Fprintln(out, "Could not open a browser; open the link above manually.")
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	select {
	case <-cs.tokens:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", "", errors.New("authorization timed out")
		}
		return "", "", ctx.Err()
	}
	return c.GetSession(token)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
