package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/units"
)

// Publisher sends one retained message.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Bridge mirrors every store change to MQTT, one retained message per unit.
type Bridge struct {
	log    *slog.Logger
	pub    Publisher
	store  *store.Store
	prefix string

	published prometheus.Counter
	failures  prometheus.Counter
}

func NewBridge(log *slog.Logger, pub Publisher, st *store.Store, prefix string) *Bridge {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Bridge{
		log:    log.With("component", "mqtt"),
		pub:    pub,
		store:  st,
		prefix: strings.Trim(prefix, "/"),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acwatch_mqtt_published_total",
			Help: "Unit state messages published to MQTT",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "acwatch_mqtt_publish_failures_total",
			Help: "Unit state messages that failed to publish",
		}),
	}
}

func (b *Bridge) Collectors() []prometheus.Collector {
	return []prometheus.Collector{b.published, b.failures}
}

// Run publishes the current collection, then again after every store change,
// until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	updates, unsubscribe := b.store.Subscribe()
	defer unsubscribe()

	b.PublishCollection(b.store.Get())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			b.PublishCollection(b.store.Get())
		}
	}
}

// PublishCollection publishes every unit of a loaded collection. Failures are
// logged and counted; the next store change retries.
func (b *Bridge) PublishCollection(c units.Collection) {
	if !c.IsLoaded() {
		return
	}
	snaps := c.Units()
	slugs := Slugs(snaps)
	for i, snap := range snaps {
		topic := UnitTopic(b.prefix, slugs[i])
		payload, err := snap.MarshalJSON()
		if err != nil {
			b.failures.Inc()
			b.log.Warn("encode unit", "unit", snap.Name, "err", err)
			continue
		}
		if err := b.pub.Publish(topic, payload); err != nil {
			b.failures.Inc()
			b.log.Warn("publish unit", "topic", topic, "err", err)
			continue
		}
		b.published.Inc()
	}
	b.log.Debug("published units", "count", len(snaps))
}

func UnitTopic(prefix, slug string) string {
	return fmt.Sprintf("%s/%s/state", strings.Trim(prefix, "/"), slug)
}

func StatusTopic(prefix string) string {
	return strings.Trim(prefix, "/") + "/status"
}

// Slugs returns a topic-safe slug per snapshot. Duplicate names get a
// numeric suffix in list order so every unit keeps its own topic.
func Slugs(snaps []units.Snapshot) []string {
	out := make([]string, len(snaps))
	seen := make(map[string]int)
	for i, snap := range snaps {
		slug := Slug(snap.Name)
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug += "-" + strconv.Itoa(n)
		}
		out[i] = slug
	}
	return out
}

// Slug lowercases name and collapses every run of non-alphanumerics to "-".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "unit"
	}
	return slug
}
