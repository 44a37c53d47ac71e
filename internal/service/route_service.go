package service

import (
	"errors"

	"caravan-bot/internal/config"
	"caravan-bot/internal/entity"
	"caravan-bot/internal/pkg/logger"
	"caravan-bot/pkg/catalog"
	"caravan-bot/pkg/placegraph"
	"caravan-bot/pkg/routetext"
)

type IRouteService interface {
	// GetCaravanRoute turns free-form route text into catalog-backed stops.
	// In exact mode every stop name must match a canonical name or alias
	// verbatim; in fuzzy mode names are resolved by fuzzy matching, with
	// ambiguity settled by the shortest total travel distance.
	GetCaravanRoute(content string, fuzzy bool) ([]entity.CaravanStop, error)
}

type routeService struct {
	catalog  *catalog.Catalog
	matching config.MatchingConfig
	logger   logger.ILogger
}

func NewRouteService(cat *catalog.Catalog, matching config.MatchingConfig, log logger.ILogger) IRouteService {
	return &routeService{
		catalog:  cat,
		matching: matching,
		logger:   log,
	}
}

func (rs *routeService) GetCaravanRoute(content string, fuzzy bool) ([]entity.CaravanStop, error) {
	intents := routetext.ParseRoute(content)
	if len(intents) == 0 {
		return nil, nil
	}

	var (
		path placegraph.Path
		err  error
	)
	if fuzzy {
		path, err = rs.resolveFuzzy(intents)
	} else {
		path, err = rs.resolveExact(intents)
	}
	if err != nil {
		return nil, err
	}

	stops := make([]entity.CaravanStop, len(intents))
	for i, intent := range intents {
		stops[i] = entity.CaravanStop{
			Waypoint:   path[i],
			Visited:    intent.Visited,
			SkipReason: intent.SkipReason,
		}
	}
	return stops, nil
}

func (rs *routeService) resolveExact(intents []entity.StopIntent) (placegraph.Path, error) {
	path := make(placegraph.Path, 0, len(intents))

	var unknown []string
	for _, intent := range intents {
		waypoint, err := rs.catalog.GetExact(intent.Name)
		if err != nil {
			var notFound *catalog.NotFoundError
			if errors.As(err, &notFound) {
				unknown = append(unknown, intent.Name)
				continue
			}
			return nil, err
		}
		path = append(path, waypoint)
	}
	if len(unknown) > 0 {
		return nil, &UnknownPlaceNamesError{Names: unknown}
	}
	return path, nil
}

func (rs *routeService) resolveFuzzy(intents []entity.StopIntent) (placegraph.Path, error) {
	graph := make(placegraph.Graph, 0, len(intents))

	var unknown []string
	for _, intent := range intents {
		candidates, err := rs.catalog.GetFuzzy(intent.Name, rs.matching.ScoreCutoff, rs.matching.SoftLimit)
		if err != nil {
			var notFound *catalog.NotFoundError
			if errors.As(err, &notFound) {
				unknown = append(unknown, intent.Name)
				continue
			}
			return nil, err
		}
		graph = append(graph, candidates)
	}
	if len(unknown) > 0 {
		return nil, &UnknownPlaceNamesError{Names: unknown}
	}

	path, err := placegraph.ShortestPath(graph, placegraph.Options{VariantLimit: rs.matching.VariantLimit})
	if err != nil {
		return nil, err
	}

	rs.logger.Debug("route_service", "resolved fuzzy route", map[string]interface{}{
		"stops":      len(path),
		"candidates": candidateCounts(graph),
	})
	return path, nil
}

func candidateCounts(graph placegraph.Graph) []int {
	counts := make([]int, len(graph))
	for i, row := range graph {
		counts[i] = len(row)
	}
	return counts
}
