package core

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/tschart/internal/contract"
	"github.com/huangsam/tschart/schema"
)

// ErrUnknownBuilder is reported for builder types no builder implements.
var ErrUnknownBuilder = errors.New("unknown builder")

// BuildSeries runs every series builder and concatenates their series in
// builder order. Builders run concurrently.
func (e *Engine) BuildSeries(ctx context.Context, ec EvaluationContext, builders []schema.BuilderDefinition) ([]schema.SeriesState, error) {
	ec = e.bind(ec)
	perBuilder, err := mapConcurrently(ctx, builders, func(ctx context.Context, b schema.BuilderDefinition) ([]schema.SeriesState, error) {
		switch b.BuilderType {
		case schema.StaticBuilder:
			return staticBuild(ctx, b.BuilderRecipe, "seriesTemplate", ec.EvaluateSeries)
		case schema.DynamicBuilder:
			return dynamicBuild(ctx, ec, b.BuilderRecipe, seriesBuildKind)
		default:
			e.warn("series builder", fmt.Errorf("%w: %q", ErrUnknownBuilder, b.BuilderType))
			return nil, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return slices.Concat(perBuilder...), nil
}

// BuildSeriesGroups runs every series group builder.
func (e *Engine) BuildSeriesGroups(ctx context.Context, ec EvaluationContext, builders []schema.BuilderDefinition) ([]schema.SeriesGroupState, error) {
	ec = e.bind(ec)
	perBuilder, err := mapConcurrently(ctx, builders, func(ctx context.Context, b schema.BuilderDefinition) ([]schema.SeriesGroupState, error) {
		switch b.BuilderType {
		case schema.StaticBuilder:
			return staticBuild(ctx, b.BuilderRecipe, "seriesGroupTemplate", ec.EvaluateSeriesGroup)
		case schema.DynamicBuilder:
			return dynamicBuild(ctx, ec, b.BuilderRecipe, seriesGroupBuildKind)
		default:
			e.warn("series group builder", fmt.Errorf("%w: %q", ErrUnknownBuilder, b.BuilderType))
			return nil, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return slices.Concat(perBuilder...), nil
}

func staticBuild[S any](ctx context.Context, recipe map[string]any, templateKey string, evaluate func(context.Context, map[string]any) (S, error)) ([]S, error) {
	template, ok := schema.AsMap(recipe[templateKey])
	if !ok {
		return nil, nil
	}
	state, err := evaluate(ctx, template)
	if err != nil {
		return nil, err
	}
	return []S{state}, nil
}

// buildKind ties a dynamic recipe layout to the source capability and the
// template evaluation it needs.
type buildKind[S any] struct {
	sourceKey   string
	templateKey string
	fetch       func(ctx context.Context, source contract.DataSource, params map[string]any) ([]any, bool, error)
	evaluate    func(ctx context.Context, ec EvaluationContext, config any, template map[string]any) (S, error)
}

var seriesBuildKind = buildKind[schema.SeriesState]{
	sourceKey:   "dynamicSeriesConfigsSource",
	templateKey: "seriesTemplate",
	fetch: func(ctx context.Context, source contract.DataSource, params map[string]any) ([]any, bool, error) {
		fetcher, ok := source.(contract.DynamicSeriesConfigFetcher)
		if !ok {
			return nil, false, nil
		}
		configs, err := fetcher.FetchDynamicSeriesConfigs(ctx, params)
		return configs, true, err
	},
	evaluate: func(ctx context.Context, ec EvaluationContext, config any, template map[string]any) (schema.SeriesState, error) {
		return ec.WithOverrides(WithDynamicSeriesConfig(config)).EvaluateSeries(ctx, template)
	},
}

var seriesGroupBuildKind = buildKind[schema.SeriesGroupState]{
	sourceKey:   "dynamicSeriesGroupConfigsSource",
	templateKey: "seriesGroupTemplate",
	fetch: func(ctx context.Context, source contract.DataSource, params map[string]any) ([]any, bool, error) {
		fetcher, ok := source.(contract.DynamicSeriesGroupConfigFetcher)
		if !ok {
			return nil, false, nil
		}
		configs, err := fetcher.FetchDynamicSeriesGroupConfigs(ctx, params)
		return configs, true, err
	},
	evaluate: func(ctx context.Context, ec EvaluationContext, config any, template map[string]any) (schema.SeriesGroupState, error) {
		return ec.WithOverrides(WithDynamicSeriesGroupConfig(config)).EvaluateSeriesGroup(ctx, template)
	},
}

// dynamicBuild fetches per-instance configs and evaluates the template once
// per config. Missing pieces of the recipe yield no states and no evaluation.
func dynamicBuild[S any](ctx context.Context, ec EvaluationContext, recipe map[string]any, kind buildKind[S]) ([]S, error) {
	sourceBlock, ok := schema.AsMap(recipe[kind.sourceKey])
	if !ok {
		return nil, nil
	}
	template, ok := schema.AsMap(recipe[kind.templateKey])
	if !ok {
		return nil, nil
	}
	if schema.SourceType(schema.StringField(sourceBlock, "sourceType")) != schema.ExternalSource {
		return nil, nil
	}
	sourceSpec, ok := schema.AsMap(sourceBlock["sourceSpec"])
	if !ok {
		// Older recipes call the block sourceParameters.
		if sourceSpec, ok = schema.AsMap(sourceBlock["sourceParameters"]); !ok {
			return nil, nil
		}
	}
	source, ok := ec.DataSource(schema.StringField(sourceSpec, "externalSourceName"))
	if !ok {
		return nil, nil
	}

	params, _ := schema.AsMap(sourceSpec["externalSourceParameters"])
	configs, supported, err := kind.fetch(ctx, source, params)
	if !supported {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching dynamic configs: %w", err)
	}

	return mapConcurrently(ctx, configs, func(ctx context.Context, config any) (S, error) {
		return kind.evaluate(ctx, ec, config, template)
	})
}
