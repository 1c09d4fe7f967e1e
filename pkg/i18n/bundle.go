package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var bundled embed.FS

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

const dateTimeKey = "format.datetime"

// Bundle holds flat message catalogues keyed by locale.
type Bundle struct {
	defaultLocale string
	messages      map[string]map[string]string
}

// Load reads the embedded catalogues.
func Load(defaultLocale string) (*Bundle, error) {
	return LoadFS(bundled, "messages/*.yaml", defaultLocale)
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the embedded catalogues with DefaultLocale as fallback. It panics when the
// embedded files are broken, which only a bad build can cause.
func Default() *Bundle {
	defaultOnce.Do(func() {
		b, err := Load(DefaultLocale)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalogues: %v", err))
		}
		defaultBundle = b
	})
	return defaultBundle
}

// LoadFS reads every catalogue matching pattern; the file name (without extension) is the locale.
func LoadFS(fsys fs.FS, pattern, defaultLocale string) (*Bundle, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob message catalogues: %w", err)
	}
	b := &Bundle{defaultLocale: normalize(defaultLocale), messages: make(map[string]map[string]string, len(files))}
	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		catalogue := map[string]string{}
		if err := yaml.Unmarshal(raw, &catalogue); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		locale := normalize(strings.TrimSuffix(path.Base(file), path.Ext(file)))
		b.messages[locale] = catalogue
	}
	if _, ok := b.messages[b.defaultLocale]; !ok {
		return nil, fmt.Errorf("no catalogue for default locale %q", b.defaultLocale)
	}
	return b, nil
}

// DefaultLocale returns the fallback locale.
func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Locales lists the available locales, sorted.
func (b *Bundle) Locales() []string {
	locales := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// Lookup resolves key for locale, falling back from region to language and then to the default locale.
func (b *Bundle) Lookup(locale, key string) (string, bool) {
	for _, candidate := range b.chain(locale) {
		if msg, ok := b.messages[candidate][key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Message returns the formatted message, or the key itself when no catalogue defines it.
func (b *Bundle) Message(locale, key string, args ...string) string {
	msg, ok := b.Lookup(locale, key)
	if !ok {
		return key
	}
	return Format(msg, args...)
}

// FormatDateTime renders t using the locale's date-time layout.
func (b *Bundle) FormatDateTime(locale string, t time.Time) string {
	layout, ok := b.Lookup(locale, dateTimeKey)
	if !ok {
		layout = time.RFC3339
	}
	return t.Format(layout)
}

// AgeFromNow renders the elapsed time between t and now as a rounded, localized label.
func (b *Bundle) AgeFromNow(locale string, t, now time.Time) string {
	key, value := ageLabel(now.Sub(t))
	if value < 0 {
		return b.Message(locale, key)
	}
	return b.Message(locale, key, strconv.FormatInt(value, 10))
}

func ageLabel(d time.Duration) (string, int64) {
	seconds := math.Abs(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	years := days / 365

	switch {
	case seconds < 45:
		return "duration.seconds", -1
	case seconds < 90:
		return "duration.minute", -1
	case minutes < 45:
		return "duration.minutes", int64(math.Round(minutes))
	case minutes < 90:
		return "duration.hour", -1
	case hours < 24:
		return "duration.hours", int64(math.Round(hours))
	case hours < 48:
		return "duration.day", -1
	case days < 30:
		return "duration.days", int64(math.Floor(days))
	case days < 60:
		return "duration.month", -1
	case days < 365:
		return "duration.months", int64(math.Floor(days / 30))
	case years < 2:
		return "duration.year", -1
	default:
		return "duration.years", int64(math.Floor(years))
	}
}

func (b *Bundle) chain(locale string) []string {
	locale = normalize(locale)
	chain := make([]string, 0, 3)
	if locale != "" {
		chain = append(chain, locale)
		if i := strings.Index(locale, "-"); i > 0 {
			chain = append(chain, locale[:i])
		}
	}
	return append(chain, b.defaultLocale)
}

func normalize(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

// Format substitutes positional {0}, {1}, ... placeholders.
func Format(pattern string, args ...string) string {
	if len(args) == 0 {
		return pattern
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", arg)
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}
