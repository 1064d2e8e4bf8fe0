package crawler

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/replydesk/replydesk/internal/bot"
)

var (
	tagPattern   = regexp.MustCompile(`<[^<]+?>`)
	titlePattern = regexp.MustCompile(`<title>(.*?)</title>`)
	imagePattern = regexp.MustCompile(`<img.*?src="(.*?)"`)
)

// Extract turns a raw HTML body into a knowledge page. Tag stripping is
// deliberately permissive: anything between "<" and the next ">" is removed,
// then entities are unescaped. The first <title> supplies the title (empty
// if absent) and every <img> src is resolved against the page URL.
func Extract(pageURL string, body []byte) bot.Page {
	raw := string(body)

	content := tagPattern.ReplaceAllString(raw, "")
	content = html.UnescapeString(content)

	title := ""
	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		title = m[1]
	}

	var images []string
	for _, m := range imagePattern.FindAllStringSubmatch(raw, -1) {
		if resolved := resolveImageURL(pageURL, m[1]); resolved != "" {
			images = append(images, resolved)
		}
	}

	return bot.Page{
		URL:     pageURL,
		Title:   title,
		Content: content,
		Images:  images,
	}
}

// resolveImageURL makes src absolute relative to the page. Unparseable
// values are dropped.
func resolveImageURL(pageURL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
