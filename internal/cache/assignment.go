package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"coldroute/internal/domain"
	"coldroute/internal/planmodel"
	"coldroute/internal/solver"
)

// AssignmentCache memoizes solver.Engine.Solve results keyed by a hash of
// the model's shipment/vehicle set, so resubmitting an unchanged depot
// snapshot within the same planning window skips a full search.
type AssignmentCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewAssignmentCache wraps a Cache with the assignment-specific key
// scheme. A zero defaultTTL falls back to ten minutes.
func NewAssignmentCache(c Cache, defaultTTL time.Duration) *AssignmentCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &AssignmentCache{cache: c, defaultTTL: defaultTTL}
}

// Get returns a cached assignment for depotID/model/strategy, if one is
// present and still valid.
func (a *AssignmentCache) Get(ctx context.Context, depotID string, model planmodel.Model, strategy solver.Strategy) (solver.Assignment, bool, error) {
	key := assignmentKey(depotID, model, strategy)

	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return solver.Assignment{}, false, nil
		}
		return solver.Assignment{}, false, err
	}

	var result solver.Assignment
	if err := json.Unmarshal(data, &result); err != nil {
		_ = a.cache.Delete(ctx, key)
		return solver.Assignment{}, false, nil
	}
	return result, true, nil
}

// Set stores an assignment under the key depotID/model/strategy hash to.
func (a *AssignmentCache) Set(ctx context.Context, depotID string, model planmodel.Model, strategy solver.Strategy, assignment solver.Assignment) error {
	key := assignmentKey(depotID, model, strategy)
	data, err := json.Marshal(assignment)
	if err != nil {
		return err
	}
	return a.cache.Set(ctx, key, data, a.defaultTTL)
}

// InvalidateDepot drops every cached assignment computed for a depot,
// regardless of strategy, e.g. after its vehicle roster changes.
func (a *AssignmentCache) InvalidateDepot(ctx context.Context, depotID string) (int64, error) {
	return a.cache.DeleteByPattern(ctx, fmt.Sprintf("assignment:*:depot=%s:*", depotID))
}

func assignmentKey(depotID string, model planmodel.Model, strategy solver.Strategy) string {
	return fmt.Sprintf("assignment:%s:depot=%s:%s", strategy, depotID, modelHash(model))
}

// modelHash builds a deterministic digest over the nodes, demands and
// vehicle fleet a model was built from, so two calls with the same
// eligible shipment/vehicle set produce the same key regardless of map
// iteration order upstream.
func modelHash(model planmodel.Model) string {
	type shipmentFacet struct {
		id     string
		weight int
		volume int
	}
	facets := make([]shipmentFacet, 0, len(model.Nodes))
	for i, n := range model.Nodes {
		if n.Kind == domain.NodeDepot {
			continue
		}
		facets = append(facets, shipmentFacet{id: n.ShipmentID, weight: model.WeightDemand[i], volume: model.VolumeDemand[i]})
	}
	sort.Slice(facets, func(i, j int) bool { return facets[i].id < facets[j].id })

	vehicles := append([]string(nil), vehicleIDs(model)...)
	sort.Strings(vehicles)

	var buf []byte
	for _, f := range facets {
		buf = append(buf, []byte(fmt.Sprintf("s:%s:%d:%d;", f.id, f.weight, f.volume))...)
	}
	for _, id := range vehicles {
		buf = append(buf, []byte(fmt.Sprintf("v:%s;", id))...)
	}

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:16])
}

func vehicleIDs(model planmodel.Model) []string {
	ids := make([]string, len(model.Vehicles))
	for i, v := range model.Vehicles {
		ids[i] = v.ID
	}
	return ids
}
