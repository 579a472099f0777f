package models

import "fmt"

// Channel is one catalog entry: where its readings come from, how it is
// labelled and where its forecast artifact lives.
type Channel struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	Field    int    `json:"field" yaml:"field"`
	Column   string `json:"column,omitempty" yaml:"column"`
	Discrete bool   `json:"discrete" yaml:"discrete"`
	Artifact string `json:"artifact,omitempty" yaml:"artifact"`
}

// SourceColumn is the column name used by tabular sources.
func (c Channel) SourceColumn() string {
	if c.Column != "" {
		return c.Column
	}
	return c.ID
}

// Catalog is the read-only channel configuration supplied at startup.
type Catalog struct {
	channels map[string]Channel
	order    []string
}

func NewCatalog(channels []Channel) (*Catalog, error) {
	c := &Catalog{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		if ch.ID == "" {
			return nil, fmt.Errorf("catalog: channel id is required")
		}
		if _, dup := c.channels[ch.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate channel %q", ch.ID)
		}
		if ch.Label == "" {
			ch.Label = ch.ID
		}
		c.channels[ch.ID] = ch
		c.order = append(c.order, ch.ID)
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("catalog: no channels configured")
	}
	return c, nil
}

func (c *Catalog) Lookup(id string) (Channel, error) {
	ch, ok := c.channels[id]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, id)
	}
	return ch, nil
}

// Channels returns every channel in configuration order.
func (c *Catalog) Channels() []Channel {
	out := make([]Channel, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.channels[id])
	}
	return out
}
