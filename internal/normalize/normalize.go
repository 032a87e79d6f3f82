// Package normalize turns heterogeneous search hits into ContentRecords and
// applies the deterministic dedupe and validation passes.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/textutil"
)

// Ordered alias keys per target field; the first non-empty value wins.
var (
	titleKeys     = []string{"title", "name", "headline"}
	urlKeys       = []string{"url", "link", "href", "post_url"}
	summaryKeys   = []string{"summary", "snippet", "description", "content", "abstract"}
	sourceKeys    = []string{"source", "publisher", "displayLink", "domain", "site_name"}
	publishedKeys = []string{"published_at", "publishedAt", "date", "pubDate", "published", "datetime", "timestamp"}
	authorKeys    = []string{"author", "byline", "creator"}
	topicKeys     = []string{"topics", "tags", "keywords", "categories"}
	kindKeys      = []string{"type", "kind"}
	startKeys     = []string{"event_start", "start", "start_date"}
	locationKeys  = []string{"event_location", "location", "venue"}
	reasonKeys    = []string{"relevance_reason", "reason", "why_it_matters"}
)

var eventWords = []string{"conference", "summit", "webinar", "hearing", "workshop", "meetup"}

// Normalize converts one raw hit into a ContentRecord. It reports false when
// the title or URL cannot be resolved.
func Normalize(raw domain.RawResult) (domain.ContentRecord, bool) {
	title := textutil.Clean(lookup(raw, titleKeys))
	link := resolveURL(lookup(raw, urlKeys))
	if title == "" || link == "" {
		return domain.ContentRecord{}, false
	}

	summary := textutil.Clean(lookup(raw, summaryKeys))
	source := textutil.Clean(lookup(raw, sourceKeys))
	if source == "" {
		source = RegisteredDomain(link)
	}

	record := domain.ContentRecord{
		Title:           title,
		URL:             link,
		Source:          source,
		Summary:         summary,
		Kind:            inferKind(lookup(raw, kindKeys), title, summary),
		Topics:          topics(raw),
		RelevanceReason: textutil.Clean(lookup(raw, reasonKeys)),
		Author:          textutil.Clean(lookup(raw, authorKeys)),
	}

	if published, ok := textutil.NormalizeDate(lookup(raw, publishedKeys)); ok {
		record.PublishedAt = published
	}
	if record.Kind == domain.KindEvent {
		record.EventStart = textutil.Clean(lookup(raw, startKeys))
		if start, ok := textutil.NormalizeDate(record.EventStart); ok {
			record.EventStart = start
		}
		record.EventLocation = textutil.Clean(lookup(raw, locationKeys))
	}

	return record, true
}

// NormalizeAll normalizes every hit, silently dropping the unusable ones.
func NormalizeAll(raws []domain.RawResult) []domain.ContentRecord {
	records := make([]domain.ContentRecord, 0, len(raws))
	for _, raw := range raws {
		if record, ok := Normalize(raw); ok {
			records = append(records, record)
		}
	}
	return records
}

// RegisteredDomain returns the eTLD+1 of a URL, falling back to its host.
func RegisteredDomain(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "" {
		return ""
	}
	if registered, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return registered
	}
	return host
}

func inferKind(explicit, title, summary string) domain.Kind {
	if kind, ok := domain.ParseKind(explicit); ok {
		return kind
	}
	text := strings.ToLower(title + " " + summary)
	for _, word := range eventWords {
		if strings.Contains(text, word) {
			return domain.KindEvent
		}
	}
	return domain.KindNews
}

func resolveURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}

func lookup(raw domain.RawResult, keys []string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if text := stringify(value); strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case map[string]any:
		for _, key := range []string{"name", "title", "href", "url"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		return ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func topics(raw domain.RawResult) []string {
	out := []string{}
	seen := map[string]struct{}{}
	push := func(topic string) {
		topic = textutil.Clean(topic)
		key := strings.ToLower(topic)
		if topic == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, topic)
	}

	for _, key := range topicKeys {
		switch v := raw[key].(type) {
		case []string:
			for _, topic := range v {
				push(topic)
			}
		case []any:
			for _, topic := range v {
				push(stringify(topic))
			}
		case string:
			for _, topic := range strings.Split(v, ",") {
				push(topic)
			}
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}
