// Package scraper pulls candidate product images from a supplier page so
// admins can attach them to a grouped product without re-uploading.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

type ImageScraper struct {
	client *http.Client
}

func NewImageScraper() *ImageScraper {
	return &ImageScraper{client: &http.Client{Timeout: 20 * time.Second}}
}

// FetchImages loads the supplier page and collects image URLs: the og:image
// meta first, then <img> sources, absolutized against the page URL, deduped.
func (s *ImageScraper) FetchImages(ctx context.Context, pageURL string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = 6
	}
	if maxResults > 20 {
		maxResults = 20
	}
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Scheme == "" {
		return nil, fmt.Errorf("invalid supplier url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	found := []string{}
	seen := map[string]struct{}{}
	add := func(raw string) {
		u := absolutize(base, raw)
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		found = append(found, u)
	}

	doc.Find(`meta[property="og:image"], meta[name="og:image"]`).Each(func(_ int, sel *goquery.Selection) {
		if v, ok := sel.Attr("content"); ok {
			add(v)
		}
	})
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if v, ok := sel.Attr("src"); ok {
			add(v)
		} else if v, ok := sel.Attr("data-src"); ok {
			add(v)
		}
		return len(found) < maxResults*3
	})

	images := filterImages(found, maxResults)
	if len(images) == 0 {
		return nil, fmt.Errorf("no usable images on %s", base.Host)
	}
	log.Info().Str("page", base.String()).Int("found", len(images)).Msg("supplier images scraped")
	return images, nil
}

func absolutize(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

func filterImages(urls []string, max int) []string {
	out := []string{}
	for _, u := range urls {
		lower := strings.ToLower(u)
		if strings.Contains(lower, "sprite") || strings.Contains(lower, "icon") || strings.Contains(lower, "logo") {
			continue
		}
		if !strings.Contains(lower, ".jpg") && !strings.Contains(lower, ".jpeg") &&
			!strings.Contains(lower, ".png") && !strings.Contains(lower, ".webp") {
			continue
		}
		out = append(out, u)
		if len(out) >= max {
			break
		}
	}
	return out
}
