package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestInlineImages_SkipsDataURIs(t *testing.T) {
	relay := &stubRelay{label: "ok", data: []byte("png"), ct: "image/png"}
	engine := &Engine{Relays: []Relay{relay}}

	doc := Document{HTML: []byte(`<html><body>` +
		`<img src="data:image/png;base64,AAAA">` +
		`<img src="">` +
		`<img src="https://example.com/remote.png">` +
		`</body></html>`)}

	result, err := engine.inlineImages(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("inline: %v", err)
	}
	if relay.calls != 1 {
		t.Fatalf("relay calls = %d, want 1 (only the remote image)", relay.calls)
	}
	if result.total != 1 || result.resolved != 1 {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(string(result.html), "data:image/png;base64,AAAA") {
		t.Fatal("existing data URI should be untouched")
	}
}

func TestInlineImages_RejectsNonImagePayload(t *testing.T) {
	relay := &stubRelay{label: "html", data: []byte("<html>error page</html>"), ct: "text/html"}
	engine := &Engine{Relays: []Relay{relay}}

	doc := Document{HTML: []byte(`<html><body><img src="https://example.com/x.png"></body></html>`)}
	result, err := engine.inlineImages(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("inline: %v", err)
	}
	if result.unresolved != 1 {
		t.Fatalf("unresolved = %d, want 1", result.unresolved)
	}
}

func TestInlineImages_TimeoutIsNonFatal(t *testing.T) {
	slow := slowRelay{delay: 200 * time.Millisecond}
	engine := &Engine{Relays: []Relay{slow}, ImageTimeout: 10 * time.Millisecond}

	doc := Document{HTML: []byte(`<html><body><img src="https://example.com/x.png"></body></html>`)}
	result, err := engine.inlineImages(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("timeout must not be fatal: %v", err)
	}
	if result.unresolved != 1 {
		t.Fatalf("unresolved = %d, want 1", result.unresolved)
	}
}

func TestInlineImages_ReportsEveryAttemptToProgress(t *testing.T) {
	relay := &stubRelay{label: "ok", data: []byte("png"), ct: "image/png"}
	engine := &Engine{Relays: []Relay{relay}}

	doc := Document{HTML: []byte(`<html><body>` +
		`<img src="https://example.com/a.png">` +
		`<img src="https://example.com/b.png">` +
		`<img src="https://example.com/c.png">` +
		`</body></html>`)}

	var seen []int
	_, err := engine.inlineImages(context.Background(), doc, func(done, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		seen = append(seen, done)
	})
	if err != nil {
		t.Fatalf("inline: %v", err)
	}
	if len(seen) != 3 || seen[len(seen)-1] != 3 {
		t.Fatalf("progress sequence = %v", seen)
	}
}

type slowRelay struct {
	delay time.Duration
}

func (s slowRelay) Name() string { return "slow" }

func (s slowRelay) Fetch(ctx context.Context, _ string) ([]byte, string, error) {
	select {
	case <-time.After(s.delay):
		return []byte("png"), "image/png", nil
	case <-ctx.Done():
		return nil, "", errors.New("deadline passed while loading image")
	}
}
