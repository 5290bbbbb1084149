package manager

import (
	"context"
	"fmt"

	"fontd/internal/resources"
	"fontd/internal/variant"
	"fontd/pkg/types"
)

// Load parses a wire request and admits it.
func (m *Manager) Load(in types.LoadRequest) (types.LoadResponse, error) {
	prio, err := ParsePriority(in.Priority)
	if err != nil {
		return types.LoadResponse{}, invalidRequestError{msg: err.Error()}
	}
	purpose, ok := resources.ParsePurpose(in.Purpose)
	if !ok {
		return types.LoadResponse{}, invalidRequestError{msg: fmt.Sprintf("unknown purpose %q", in.Purpose)}
	}
	style, err := variant.ParseStyle(in.Style)
	if err != nil {
		return types.LoadResponse{}, invalidRequestError{msg: err.Error()}
	}
	req := LoadRequest{
		Family:      in.Family,
		Priority:    prio,
		Purpose:     purpose,
		Weight:      in.Weight,
		Style:       style,
		ForceReload: in.ForceReload,
	}
	if err := m.Request(req); err != nil {
		return types.LoadResponse{}, err
	}
	fs, _ := m.FamilyState(req.normalized().Family)
	return types.LoadResponse{Family: fs.Family, State: fs.State}, nil
}

// SetNetwork applies the host signals present in req.
func (m *Manager) SetNetwork(req types.NetworkRequest) {
	if req.SlowLink != nil {
		m.SetSlowLink(*req.SlowLink)
	}
	if req.Online != nil {
		m.SetOnline(*req.Online)
	}
}

// Payload returns the outline bytes nearest to weight/style.
func (m *Manager) Payload(ctx context.Context, family string, weight int, style string) ([]byte, error) {
	st, err := variant.ParseStyle(style)
	if err != nil {
		return nil, invalidRequestError{msg: err.Error()}
	}
	if weight <= 0 {
		weight = variant.Regular.Weight
	}
	e, err := m.Binary(ctx, family, weight, st)
	if err != nil {
		return nil, err
	}
	return e.Data, nil
}

// Families lists the catalog with the variants each family offers.
func (m *Manager) Families(ctx context.Context) ([]types.Family, error) {
	c, err := m.cat.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Family, 0, len(c.Entries))
	for _, name := range c.Families() {
		e, _ := c.Find(name)
		out = append(out, types.Family{
			Family:   e.Family,
			Category: e.Category,
			Variants: variantDTOs(variant.Discover(e.Variants).Keys()),
		})
	}
	return out, nil
}
