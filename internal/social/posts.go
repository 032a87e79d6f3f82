package social

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/textutil"
)

var (
	hashtagExpr = regexp.MustCompile(`#(\w+)`)
	mentionExpr = regexp.MustCompile(`@(\w+)`)
	metricExprs = map[string]*regexp.Regexp{
		"likes":    regexp.MustCompile(`(\d+)\s*likes?`),
		"shares":   regexp.MustCompile(`(\d+)\s*shares?`),
		"comments": regexp.MustCompile(`(\d+)\s*comments?`),
		"views":    regexp.MustCompile(`(\d+)\s*views?`),
	}
)

// categoryKeywords maps a category to the phrases that put a post in it.
var categoryKeywords = map[string][]string{
	"product_launch":     {"launch", "introducing", "new product", "release", "unveil"},
	"announcement":       {"announce", "announcement", "news", "update"},
	"tutorial":           {"how to", "tutorial", "guide", "learn", "step by step"},
	"event":              {"event", "conference", "webinar", "workshop", "summit"},
	"case_study":         {"case study", "success story", "customer story"},
	"technical":          {"api", "sdk", "code", "developer", "technical", "programming"},
	"community":          {"community", "join us", "follow", "subscribe"},
	"thought_leadership": {"future", "trends", "innovation", "vision", "perspective"},
}

// PlatformFromURL names the social network a URL belongs to.
func PlatformFromURL(link string) string {
	host := hostOf(link)
	switch {
	case hasDomain(host, "facebook.com"), hasDomain(host, "fb.com"):
		return "facebook"
	case hasDomain(host, "twitter.com"), hasDomain(host, "x.com"):
		return "twitter"
	case hasDomain(host, "linkedin.com"):
		return "linkedin"
	case hasDomain(host, "instagram.com"):
		return "instagram"
	case hasDomain(host, "youtube.com"):
		return "youtube"
	default:
		return "unknown"
	}
}

// AccountName extracts the handle or page name from a profile URL.
func AccountName(link string) string {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(link), "/"))
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	var parts []string
	for _, p := range strings.Split(parsed.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return parsed.Host
	}
	switch PlatformFromURL(link) {
	case "facebook", "twitter":
		return parts[0]
	default:
		return parts[len(parts)-1]
	}
}

// Categorize tags content by keyword; content matching nothing is "general".
func Categorize(content string) []string {
	lower := strings.ToLower(content)
	var categories []string
	for category, keywords := range categoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				categories = append(categories, category)
				break
			}
		}
	}
	if len(categories) == 0 {
		return []string{"general"}
	}
	sort.Strings(categories)
	return categories
}

// NormalizePost maps a loosely shaped post onto SocialPost. now supplies the
// timestamp when the post carries none.
func NormalizePost(raw map[string]any, now time.Time) domain.SocialPost {
	accountURL := str(raw, "account_url", "profile_url")
	postURL := str(raw, "post_url", "url", "link")
	content := textutil.Clean(str(raw, "content", "text", "body"))

	platform := strings.ToLower(str(raw, "platform"))
	if platform == "" {
		platform = PlatformFromURL(textutil.FirstNonEmpty(accountURL, postURL))
	}
	account := str(raw, "account", "author", "handle")
	if account == "" {
		account = AccountName(textutil.FirstNonEmpty(accountURL, postURL))
	}

	timestamp := str(raw, "timestamp", "date", "published_at")
	if timestamp == "" {
		timestamp = now.Format(time.RFC3339)
	}

	mediaType := str(raw, "media_type")
	if mediaType == "" {
		mediaType = "text"
	}

	return domain.SocialPost{
		Platform:   platform,
		Account:    account,
		AccountURL: accountURL,
		PostURL:    postURL,
		Content:    content,
		Timestamp:  timestamp,
		Categories: Categorize(content),
		Engagement: engagement(raw),
		MediaType:  mediaType,
		Hashtags:   matches(hashtagExpr, content),
		Mentions:   matches(mentionExpr, content),
	}
}

// IsRecent reports whether timestamp falls within the last days. Timestamps
// that cannot be parsed count as recent.
func IsRecent(timestamp string, days int, now time.Time) bool {
	iso, ok := textutil.NormalizeDate(timestamp)
	if !ok {
		return true
	}
	cutoff := now.AddDate(0, 0, -days)
	if parsed, err := time.Parse(time.RFC3339, iso); err == nil {
		return !parsed.Before(cutoff)
	}
	day, ok := textutil.DateOf(iso)
	if !ok {
		return true
	}
	return !day.Before(time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC))
}

// FilterRelevant keeps posts mentioning a keyword or carrying a priority category.
func FilterRelevant(posts []domain.SocialPost, keywords, priority []string) []domain.SocialPost {
	kept := make([]domain.SocialPost, 0, len(posts))
	for _, post := range posts {
		if mentionsAny(post.Content, keywords) || sharesCategory(post.Categories, priority) {
			kept = append(kept, post)
		}
	}
	return kept
}

func mentionsAny(content string, keywords []string) bool {
	lower := strings.ToLower(content)
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func sharesCategory(categories, priority []string) bool {
	for _, c := range categories {
		for _, p := range priority {
			if c == p {
				return true
			}
		}
	}
	return false
}

func engagement(raw map[string]any) domain.Engagement {
	counts := map[string]int{}
	if nested, ok := raw["engagement"].(map[string]any); ok {
		for key := range metricExprs {
			if n, ok := toInt(nested[key]); ok {
				counts[key] = n
			}
		}
	}

	text := strings.ToLower(fmt.Sprint(raw))
	for key, expr := range metricExprs {
		if _, found := counts[key]; found {
			continue
		}
		if m := expr.FindStringSubmatch(text); m != nil {
			counts[key], _ = strconv.Atoi(m[1])
		}
	}

	return domain.Engagement{
		Likes:    counts["likes"],
		Shares:   counts["shares"],
		Comments: counts["comments"],
		Views:    counts["views"],
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func matches(expr *regexp.Regexp, content string) []string {
	found := expr.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(found))
	for _, m := range found {
		out = append(out, m[1])
	}
	return out
}

func str(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func hostOf(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func hasDomain(host, suffix string) bool {
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}
