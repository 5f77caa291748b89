// Package stats computes dashboard counts and per-expert activity from visit records.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/patrickmn/go-cache"

	"github.com/bfcwefc/msme-desk/internal/area"
	"github.com/bfcwefc/msme-desk/internal/record"
)

const (
	// OthersBucket collects sectors matching no configured bucket.
	OthersBucket = "Others"
	// Unspecified labels records with no sector in the raw breakdown.
	Unspecified = "Unspecified"
	// RecentLimit is the number of records in an expert's recent activity.
	RecentLimit = 5
)

// SectorBucket is a coarse sector category matched by keyword containment.
type SectorBucket struct {
	Name     string
	Keywords []string
}

// DefaultSectorBuckets is the fixed dashboard vocabulary. Order matters: the
// first bucket with a matching keyword wins.
var DefaultSectorBuckets = []SectorBucket{
	{Name: "Manufacturing", Keywords: []string{"manufacturing"}},
	{Name: "Service", Keywords: []string{"service"}},
	{Name: "Trading", Keywords: []string{"trading", "retail"}},
}

// BucketFor returns the name of the first bucket whose keyword occurs in
// sector (case-insensitive), or OthersBucket.
func BucketFor(sector string, buckets []SectorBucket) string {
	lower := strings.ToLower(sector)
	for _, b := range buckets {
		for _, k := range b.Keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				return b.Name
			}
		}
	}
	return OthersBucket
}

// NameValue is one chart slice.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Global is the dashboard summary over all records.
type Global struct {
	Total     int         `json:"total"`
	Resolved  int         `json:"resolved"`
	Pending   int         `json:"pending"`
	Area      []NameValue `json:"area"`
	Sector    []NameValue `json:"sector"`
	SectorRaw []NameValue `json:"sectorRaw"`
}

// Expert is the activity summary for one expert name.
type Expert struct {
	TotalVisits    int              `json:"totalVisits"`
	Resolved       int              `json:"resolved"`
	Pending        int              `json:"pending"`
	Registrations  int              `json:"registrations"`
	RecentActivity []record.Summary `json:"recentActivity"`
}

// Source is the record data the service aggregates over.
type Source interface {
	CountTotals(ctx context.Context, expertName string) (record.Totals, error)
	CountByArea(ctx context.Context) (map[area.Area]int, error)
	CountBySector(ctx context.Context) ([]record.GroupCount, error)
	Recent(ctx context.Context, expertName string, limit int) ([]*record.VisitRecord, error)
}

// Service computes statistics, caching results for a short TTL.
type Service struct {
	src     Source
	buckets []SectorBucket
	cache   *cache.Cache
}

// NewService creates a stats service. A ttl of zero disables caching.
func NewService(src Source, ttl time.Duration) *Service {
	s := &Service{src: src, buckets: DefaultSectorBuckets}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// SetSectorBuckets replaces the sector buckets and drops cached results.
func (s *Service) SetSectorBuckets(buckets []SectorBucket) {
	s.buckets = buckets
	s.Invalidate()
}

// Invalidate drops all cached results. Write paths call this after every
// record mutation.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

// Global returns the dashboard summary.
func (s *Service) Global(ctx context.Context) (*Global, error) {
	const key = "global"
	if v, ok := s.cached(key); ok {
		return v.(*Global), nil
	}

	totals, err := s.src.CountTotals(ctx, "")
	if err != nil {
		return nil, err
	}

	areas, err := s.src.CountByArea(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.src.CountBySector(ctx)
	if err != nil {
		return nil, err
	}

	g := &Global{
		Total:     totals.Total,
		Resolved:  totals.Resolved,
		Pending:   totals.Pending,
		Area:      make([]NameValue, 0, len(area.All)),
		Sector:    s.sectorBuckets(groups),
		SectorRaw: sectorRaw(groups),
	}
	for _, a := range area.All {
		g.Area = append(g.Area, NameValue{Name: string(a), Value: areas[a]})
	}

	s.store(key, g)
	return g, nil
}

// Expert returns activity for an expert name.
func (s *Service) Expert(ctx context.Context, name string) (*Expert, error) {
	key := "expert:" + strings.ToLower(name)
	if v, ok := s.cached(key); ok {
		return v.(*Expert), nil
	}

	totals, err := s.src.CountTotals(ctx, name)
	if err != nil {
		return nil, err
	}

	recent, err := s.src.Recent(ctx, name, RecentLimit)
	if err != nil {
		return nil, err
	}

	summaries := make([]record.Summary, 0, len(recent))
	if err := copier.Copy(&summaries, recent); err != nil {
		return nil, fmt.Errorf("projecting recent activity: %w", err)
	}

	e := &Expert{
		TotalVisits:    totals.Total,
		Resolved:       totals.Resolved,
		Pending:        totals.Pending,
		Registrations:  totals.Registrations,
		RecentActivity: summaries,
	}

	s.store(key, e)
	return e, nil
}

// sectorBuckets folds raw sector groups into the configured buckets plus
// Others. Every group lands in exactly one bucket.
func (s *Service) sectorBuckets(groups []record.GroupCount) []NameValue {
	counts := make(map[string]int)
	for _, g := range groups {
		counts[BucketFor(g.Value, s.buckets)] += g.Count
	}

	out := make([]NameValue, 0, len(s.buckets)+1)
	for _, b := range s.buckets {
		out = append(out, NameValue{Name: b.Name, Value: counts[b.Name]})
	}
	return append(out, NameValue{Name: OthersBucket, Value: counts[OthersBucket]})
}

// sectorRaw labels each literal sector group, merging null and empty into
// Unspecified, ordered by count then name.
func sectorRaw(groups []record.GroupCount) []NameValue {
	counts := make(map[string]int)
	for _, g := range groups {
		name := g.Value
		if g.Null || name == "" {
			name = Unspecified
		}
		counts[name] += g.Count
	}

	out := make([]NameValue, 0, len(counts))
	for name, n := range counts {
		out = append(out, NameValue{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Service) cached(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Service) store(key string, v interface{}) {
	if s.cache != nil {
		s.cache.SetDefault(key, v)
	}
}
