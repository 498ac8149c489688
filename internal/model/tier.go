package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PricingTier is one pricing plan
type PricingTier struct {
	Name     string   `json:"name" yaml:"name"`
	Price    Price    `json:"price,omitzero" yaml:"price,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// NamedTier pairs a tier with the key it was listed under
type NamedTier struct {
	Key  string
	Tier PricingTier
}

// TierSet is an ordered mapping of tier name to tier.
// Order follows the source document so reports list tiers as authored.
type TierSet []NamedTier

// Get returns the tier stored under key
func (s TierSet) Get(key string) (PricingTier, bool) {
	for _, nt := range s {
		if nt.Key == key {
			return nt.Tier, true
		}
	}
	return PricingTier{}, false
}

// Set stores a tier, keeping the position of an existing key
func (s *TierSet) Set(key string, tier PricingTier) {
	for i := range *s {
		if (*s)[i].Key == key {
			(*s)[i].Tier = tier
			return
		}
	}
	*s = append(*s, NamedTier{Key: key, Tier: tier})
}

// Keys returns the tier names in order
func (s TierSet) Keys() []string {
	keys := make([]string, len(s))
	for i, nt := range s {
		keys[i] = nt.Key
	}
	return keys
}

// MarshalJSON writes the set as a JSON object in order
func (s TierSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nt := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(nt.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(nt.Tier)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of tiers, preserving key order
func (s *TierSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tier set: expected JSON object")
	}

	var out TierSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("tier set: expected string key")
		}

		var tier PricingTier
		if err := dec.Decode(&tier); err != nil {
			return fmt.Errorf("tier set: tier %q: %w", key, err)
		}
		out.Set(key, tier)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

// UnmarshalYAML reads a YAML mapping of tiers, preserving key order
func (s *TierSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("tier set: expected mapping at line %d", node.Line)
	}

	var out TierSet
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value

		var tier PricingTier
		if err := node.Content[i+1].Decode(&tier); err != nil {
			return fmt.Errorf("tier set: tier %q: %w", key, err)
		}
		out.Set(key, tier)
	}

	*s = out
	return nil
}

// MarshalYAML writes the set as an ordered mapping
func (s TierSet) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, nt := range s {
		var val yaml.Node
		if err := val.Encode(nt.Tier); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: nt.Key},
			&val,
		)
	}
	return node, nil
}
