package arxiv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ArxivBrowser/internal/platform"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/atom"
)

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	versionRe    = regexp.MustCompile(`v\d+$`)
	totalRe      = regexp.MustCompile(`of\s+([\d,]+)\s+results`)
	submittedRe  = regexp.MustCompile(`Submitted\s*(.+?);`)
	v1SubmitRe   = regexp.MustCompile(`v1\s*submitted\s+(.+?);`)
	errorEntryID = "/api/errors"
)

// ParseAtomFeed 解析 export API 返回的 Atom feed
func ParseAtomFeed(xmlContent string) ([]*platform.Entry, int, error) {
	if strings.TrimSpace(xmlContent) == "" {
		return nil, 0, fmt.Errorf("empty atom response")
	}

	fp := &atom.Parser{}
	feed, err := fp.Parse(strings.NewReader(xmlContent))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse atom: %w", err)
	}

	var entries []*platform.Entry
	for _, e := range feed.Entries {
		// arXiv 把查询错误也包装成一条 entry 返回
		if strings.Contains(e.ID, errorEntryID) {
			return nil, 0, fmt.Errorf("arXiv API error: %s", cleanText(e.Summary))
		}
		entries = append(entries, convertAtomEntry(e))
	}

	return entries, totalResults(feed, len(entries)), nil
}

func convertAtomEntry(e *atom.Entry) *platform.Entry {
	entry := &platform.Entry{
		ID:      parseArxivIDFromURL(e.ID),
		Title:   cleanText(e.Title),
		Summary: cleanText(e.Summary),
	}

	for _, a := range e.Authors {
		if a == nil {
			continue
		}
		if name := strings.TrimSpace(a.Name); name != "" {
			entry.Authors = append(entry.Authors, name)
		}
	}

	for _, c := range e.Categories {
		if c != nil && c.Term != "" {
			entry.Categories = append(entry.Categories, c.Term)
		}
	}

	for _, l := range e.Links {
		if l == nil {
			continue
		}
		switch {
		case l.Title == "pdf" || l.Type == "application/pdf":
			entry.PDFURL = l.Href
		case l.Rel == "alternate" || (l.Rel == "" && entry.AbstractURL == ""):
			entry.AbstractURL = l.Href
		}
	}
	if entry.AbstractURL == "" && strings.Contains(e.ID, "/abs/") {
		entry.AbstractURL = e.ID
	}

	if e.PublishedParsed != nil {
		entry.Published = *e.PublishedParsed
	}
	if e.UpdatedParsed != nil {
		t := *e.UpdatedParsed
		entry.Updated = &t
	}
	return entry
}

func totalResults(feed *atom.Feed, fallback int) int {
	// 前缀大小写取决于 feed 的命名空间声明
	for prefix, ns := range feed.Extensions {
		if !strings.EqualFold(prefix, "opensearch") {
			continue
		}
		if vals := ns["totalResults"]; len(vals) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(vals[0].Value)); err == nil {
				return n
			}
		}
	}
	return fallback
}

// ParseSearchHTML 解析 advanced search 结果页
func ParseSearchHTML(htmlContent string) ([]*platform.Entry, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	total := 0
	for _, sel := range []string{"#main-container h1", "h1.title", "h1"} {
		doc.Find(sel).EachWithBreak(func(i int, s *goquery.Selection) bool {
			text := cleanText(s.Text())
			if strings.Contains(text, "Sorry") {
				return false
			}
			if m := totalRe.FindStringSubmatch(text); len(m) > 1 {
				total, _ = strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
				return false
			}
			return true
		})
		if total > 0 {
			break
		}
	}

	var entries []*platform.Entry
	doc.Find("li.arxiv-result").Each(func(i int, s *goquery.Selection) {
		if entry := parseResultItem(s); entry != nil {
			entries = append(entries, entry)
		}
	})

	if total == 0 {
		total = len(entries)
	}
	return entries, total, nil
}

func parseResultItem(s *goquery.Selection) *platform.Entry {
	entry := &platform.Entry{}

	if link := s.Find("p.list-title a").First(); link.Length() > 0 {
		entry.AbstractURL, _ = link.Attr("href")
		entry.ID = parseArxivIDFromURL(entry.AbstractURL)
	}
	if entry.ID == "" {
		return nil
	}

	if pdf := s.Find(`a[href*="/pdf/"]`).First(); pdf.Length() > 0 {
		entry.PDFURL, _ = pdf.Attr("href")
	}

	entry.Title = cleanText(s.Find("p.title").Text())

	if authors := s.Find("p.authors"); authors.Length() > 0 {
		authors.Find("a").Each(func(i int, a *goquery.Selection) {
			if name := cleanText(a.Text()); name != "" {
				entry.Authors = append(entry.Authors, name)
			}
		})
	}

	if abstract := s.Find("span.abstract-full"); abstract.Length() > 0 {
		abstract.Find("a").Remove()
		entry.Summary = cleanText(abstract.Text())
	}

	s.Find("span.tag.tooltip").Each(func(i int, tag *goquery.Selection) {
		if cat := strings.TrimSpace(tag.Text()); cat != "" {
			entry.Categories = append(entry.Categories, cat)
		}
	})

	if dateElem := s.Find("p.is-size-7"); dateElem.Length() > 0 {
		entry.Published, entry.Updated = parseDates(cleanText(dateElem.Text()))
	}
	return entry
}

// parseDates 解析 "Submitted 3 March, 2025; v1 submitted 1 March, 2025; originally announced ..."
// 有 v1 时 v1 为首次提交，Submitted 为最近更新
func parseDates(text string) (time.Time, *time.Time) {
	var latest time.Time
	if m := submittedRe.FindStringSubmatch(text); len(m) > 1 {
		latest = parseDay(m[1])
	}

	if m := v1SubmitRe.FindStringSubmatch(text); len(m) > 1 {
		first := parseDay(m[1])
		if !latest.IsZero() && !latest.Equal(first) {
			return first, &latest
		}
		return first, nil
	}
	return latest, nil
}

func parseDay(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2 January, 2006", "2 Jan, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func cleanText(text string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// parseArxivIDFromURL 从 http://arxiv.org/abs/2408.12345v2 提取 2408.12345
// 去掉版本号，保证同一篇论文多次抓取 ID 一致
func parseArxivIDFromURL(u string) string {
	u = strings.TrimSpace(u)
	idx := strings.Index(u, "/abs/")
	if idx < 0 {
		return ""
	}
	id := strings.Trim(u[idx+len("/abs/"):], "/")
	return versionRe.ReplaceAllString(id, "")
}
