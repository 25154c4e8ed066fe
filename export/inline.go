package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// inlineResult is the outcome of resolving every image reference in a tree.
type inlineResult struct {
	html       []byte
	total      int
	resolved   int
	unresolved int
}

// inlineImages rewrites every remotely hosted <img> source to a data URI so
// the rasterizer needs no network access. Each image is fetched through the
// relay chain under its own deadline; resolutions run concurrently and the
// function returns only once every attempt has settled. A failed image keeps
// its original source and is reported, never fatal.
//
// The root element's theme attribute is also forced to the capture theme
// here, so the serialized tree matches the normalized ambient state.
func (e *Engine) inlineImages(ctx context.Context, doc Document, progress func(done, total int)) (inlineResult, error) {
	tree, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.HTML))
	if err != nil {
		return inlineResult{}, NewError(PhaseResolve, KindInternal, "parse rendered tree", err)
	}

	tree.Find("html").SetAttr("data-theme", string(CaptureTheme))

	type target struct {
		sel *goquery.Selection
		src string
	}

	var targets []target
	tree.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		src = strings.TrimSpace(src)
		// Already self-contained, no fetch needed.
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		targets = append(targets, target{sel: sel, src: src})
	})

	result := inlineResult{total: len(targets)}

	inlined := make([]string, len(targets))
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()

			uri, err := e.resolveImage(ctx, tgt.src)
			if err != nil {
				e.logger().Warnf("export: leaving image unresolved: %s: %v", tgt.src, err)
			} else {
				inlined[i] = uri
			}

			mu.Lock()
			done++
			if progress != nil {
				// Held lock keeps sink callbacks serialized.
				progress(done, len(targets))
			}
			mu.Unlock()
		}(i, tgt)
	}
	wg.Wait()

	for i, tgt := range targets {
		if inlined[i] == "" {
			result.unresolved++
			continue
		}
		tgt.sel.SetAttr("src", inlined[i])
		result.resolved++
	}

	html, err := goquery.OuterHtml(tree.Selection)
	if err != nil {
		return inlineResult{}, NewError(PhaseResolve, KindInternal, "serialize rendered tree", err)
	}
	result.html = []byte(html)
	return result, nil
}

// resolveImage tries each relay in order until one returns bytes. The whole
// attempt is bounded by the engine's image timeout; expiry is treated like
// any other miss.
func (e *Engine) resolveImage(ctx context.Context, src string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.imageTimeout())
	defer cancel()

	var lastErr error
	for _, relay := range e.relays() {
		data, contentType, err := relay.Fetch(ctx, src)
		if err != nil {
			lastErr = fmt.Errorf("relay %s: %w", relay.Name(), err)
			continue
		}
		if !strings.HasPrefix(contentType, "image/") {
			lastErr = fmt.Errorf("relay %s: unexpected content type %q", relay.Name(), contentType)
			continue
		}
		return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no relays configured")
	}
	return "", lastErr
}
