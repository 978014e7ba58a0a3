// Command auctionctl is a CLI client for the auction service HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "phoenixpme")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "phoenixpme")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- HTTP helpers ----

type client struct {
	base string
	http *http.Client
}

func newClient(base string) *client {
	return &client{base: base, http: &http.Client{Timeout: 15 * time.Second}}
}

// do sends a JSON request; authed attaches the stored token.
func (c *client) do(method, path string, body any, authed bool) (json.RawMessage, error) {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		tok, err := loadToken()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		var er struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &er) == nil && er.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, er.Error)
		}
		return nil, fmt.Errorf("%s", resp.Status)
	}
	return raw, nil
}

func printJSON(raw json.RawMessage) {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(out.String())
}

// ---- commands ----

func usage() {
	fmt.Fprintln(os.Stderr, `usage: auctionctl [-server URL] <command> [args]

commands:
  register  -user U -pass P -address A
  login     -user U -pass P
  create    -desc D -price N -duration SECONDS [-reserve N]
  bid       -id AUCTION -amount N
  end       -id AUCTION
  release   -id AUCTION
  cancel    -id AUCTION
  get       -id AUCTION
  bids      -id AUCTION
  list      [-status S] [-seller A]`)
	os.Exit(2)
}

func main() {
	server := flag.String("server", "http://localhost:8080", "API base URL")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	c := newClient(*server)

	cmd := flag.Arg(0)
	args := flag.Args()[1:]
	if err := run(c, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(c *client, cmd string, args []string) error {
	switch cmd {
	case "register":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		user := fs.String("user", "", "username")
		pass := fs.String("pass", "", "password")
		address := fs.String("address", "", "settlement address")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodPost, "/api/register",
			map[string]string{"username": *user, "password": *pass, "address": *address}, false)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		user := fs.String("user", "", "username")
		pass := fs.String("pass", "", "password")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodPost, "/api/login",
			map[string]string{"username": *user, "password": *pass}, false)
		if err != nil {
			return err
		}
		var resp struct {
			AccessToken string    `json:"access_token"`
			ExpiresAt   time.Time `json:"expires_at"`
			Address     string    `json:"address"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return err
		}
		if err := saveToken(resp.AccessToken, resp.ExpiresAt); err != nil {
			return err
		}
		fmt.Printf("logged in as %s (token valid until %s)\n", resp.Address, resp.ExpiresAt.Format(time.RFC3339))
		return nil

	case "create":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		desc := fs.String("desc", "", "item description")
		price := fs.Int64("price", 0, "starting price (minor units)")
		duration := fs.Int64("duration", 0, "duration in seconds")
		reserve := fs.Int64("reserve", 0, "reserve price (0 = none)")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodPost, "/auctions", map[string]any{
			"item_description": *desc,
			"starting_price":   *price,
			"duration_seconds": *duration,
			"reserve_price":    *reserve,
		}, true)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	case "bid":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "auction id")
		amount := fs.Int64("amount", 0, "bid amount (minor units)")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodPost, "/auctions/"+*id+"/bids",
			map[string]int64{"amount": *amount}, true)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	case "end", "release", "cancel":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "auction id")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodPost, "/auctions/"+*id+"/"+cmd, nil, true)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	case "get":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "auction id")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodGet, "/auctions/"+*id, nil, false)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	case "bids":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "auction id")
		_ = fs.Parse(args)
		raw, err := c.do(http.MethodGet, "/auctions/"+*id+"/bids", nil, false)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	case "list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		status := fs.String("status", "", "filter by status")
		seller := fs.String("seller", "", "filter by seller address")
		_ = fs.Parse(args)
		path := "/auctions" + listQuery(*status, *seller)
		raw, err := c.do(http.MethodGet, path, nil, false)
		if err != nil {
			return err
		}
		printJSON(raw)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listQuery(status, seller string) string {
	q := ""
	sep := "?"
	if status != "" {
		q += sep + "status=" + status
		sep = "&"
	}
	if seller != "" {
		q += sep + "seller=" + seller
	}
	return q
}
