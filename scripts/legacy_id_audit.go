// Audit of historical completion-record id formats.
//
// The legacy migration refuses to run without a configured
// migration.legacy_id_pattern, and that pattern must come from real data:
// deployments accumulated different id shapes over time. Run this against
// the production database, review the buckets, then set the pattern.
//
// Usage: go run scripts/legacy_id_audit.go

package main

import (
	"fmt"
	"log"
	"os"
	"regexp"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/config"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/model"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/database"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"

	"gopkg.in/yaml.v3"
)

// currentScheme matches ids minted by the lesson-prefixed scheme:
// lessonID_batchTS_index_slug.
var currentScheme = regexp.MustCompile(`^.+_\d{13}_\d+_[a-z0-9-]+$`)

var buckets = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"numeric", regexp.MustCompile(`^[0-9]+$`)},
	{"uuid", regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)},
	{"bare-slug", regexp.MustCompile(`^[a-z0-9-]+$`)},
}

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("cannot read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("cannot parse config file: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	var records []model.CompletionRecord
	if err := db.Find(&records).Error; err != nil {
		log.Fatalf("query failed: %v", err)
	}

	counts := map[string]int{}
	samples := map[string][]string{}

	for _, rec := range records {
		name := classify(rec.SubTopicID)
		counts[name]++
		if len(samples[name]) < 5 {
			samples[name] = append(samples[name], rec.SubTopicID)
		}
	}

	fmt.Printf("scanned %d completion records\n\n", len(records))
	for name, n := range counts {
		fmt.Printf("%-12s %6d\n", name, n)
		for _, s := range samples[name] {
			fmt.Printf("    %s\n", s)
		}
	}

	fmt.Println("\nids in the 'current' bucket need no migration.")
	fmt.Println("pick the legacy bucket(s) and set migration.legacy_id_pattern accordingly.")
}

func classify(id string) string {
	if currentScheme.MatchString(id) {
		return "current"
	}
	for _, b := range buckets {
		if b.pattern.MatchString(id) {
			return b.name
		}
	}
	return "other"
}
