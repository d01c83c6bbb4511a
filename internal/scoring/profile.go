package scoring

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// EvidenceWeights are the per-check adjustments applied by the evidence evaluator.
// Missing values are penalties, present values are bonuses; both are stored positive.
type EvidenceWeights struct {
	EmptyScore      int `yaml:"empty_score" json:"empty_score"`
	ImageMissing    int `yaml:"image_missing" json:"image_missing"`
	ImagePresent    int `yaml:"image_present" json:"image_present"`
	TextMissing     int `yaml:"text_missing" json:"text_missing"`
	TrackingMissing int `yaml:"tracking_missing" json:"tracking_missing"`
	TrackingPresent int `yaml:"tracking_present" json:"tracking_present"`
}

// ChatProfile holds the transcript keyword tables and their score contributions.
type ChatProfile struct {
	ThreatScore     int      `yaml:"threat_score" json:"threat_score"`
	RefusalScore    int      `yaml:"refusal_score" json:"refusal_score"`
	ThreatKeywords  []string `yaml:"threat_keywords" json:"threat_keywords"`
	PromiseKeywords []string `yaml:"promise_keywords" json:"promise_keywords"`
	RefusalKeywords []string `yaml:"refusal_keywords" json:"refusal_keywords"`
}

// Profile is the static scoring configuration. It is loaded once at startup.
type Profile struct {
	Evidence EvidenceWeights `yaml:"evidence" json:"evidence"`
	Chat     ChatProfile     `yaml:"chat" json:"chat"`
}

// DefaultProfile returns the embedded profile.
func DefaultProfile() Profile {
	profile, err := parseProfile(defaultProfileYAML, Profile{})
	if err != nil {
		panic(fmt.Sprintf("embedded scoring profile: %v", err))
	}
	return profile
}

// LoadProfile reads a YAML profile from path and layers it over the embedded defaults.
// An empty path returns the defaults unchanged.
func LoadProfile(path string) (Profile, error) {
	base := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Profile{}, fmt.Errorf("read scoring profile: %w", err)
	}
	return parseProfile(data, base)
}

func parseProfile(data []byte, base Profile) (Profile, error) {
	profile := base
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("unmarshal scoring profile: %w", err)
	}
	profile.Chat.ThreatKeywords = normalizeKeywords(profile.Chat.ThreatKeywords)
	profile.Chat.PromiseKeywords = normalizeKeywords(profile.Chat.PromiseKeywords)
	profile.Chat.RefusalKeywords = normalizeKeywords(profile.Chat.RefusalKeywords)
	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Validate rejects negative weights.
func (p Profile) Validate() error {
	w := p.Evidence
	for name, v := range map[string]int{
		"empty_score":      w.EmptyScore,
		"image_missing":    w.ImageMissing,
		"image_present":    w.ImagePresent,
		"text_missing":     w.TextMissing,
		"tracking_missing": w.TrackingMissing,
		"tracking_present": w.TrackingPresent,
		"threat_score":     p.Chat.ThreatScore,
		"refusal_score":    p.Chat.RefusalScore,
	} {
		if v < 0 {
			return fmt.Errorf("scoring profile: %s must not be negative", name)
		}
	}
	if len(p.Chat.ThreatKeywords)+len(p.Chat.PromiseKeywords)+len(p.Chat.RefusalKeywords) == 0 {
		return errors.New("scoring profile: chat keyword tables are empty")
	}
	return nil
}

func normalizeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
