package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

type sessionCtxKey struct{}

func sessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionCtxKey{}).(string)
	return id
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boxType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"south": &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Selection",
		Fields: graphql.Fields{
			"box":         &graphql.Field{Type: boxType},
			"display":     &graphql.Field{Type: graphql.String},
			"source":      &graphql.Field{Type: graphql.String},
			"selected_at": &graphql.Field{Type: graphql.DateTime},
			"center":      &graphql.Field{Type: geoPointType},
			"area_km2":    &graphql.Field{Type: graphql.Float},
			"width_m":     &graphql.Field{Type: graphql.Float},
			"height_m":    &graphql.Field{Type: graphql.Float},
		},
	})

	downloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Download",
		Fields: graphql.Fields{
			"path":        &graphql.Field{Type: graphql.String},
			"bytes":       &graphql.Field{Type: graphql.Int},
			"size_kb":     &graphql.Field{Type: graphql.Float},
			"box":         &graphql.Field{Type: boxType},
			"duration_ms": &graphql.Field{Type: graphql.Int},
		},
	})

	selection := func(sel *domain.StoredSelection) map[string]interface{} {
		v := newSelectionResponse(sel)
		return map[string]interface{}{
			"box":         v.Box,
			"display":     v.Display.Text,
			"source":      string(v.Source),
			"selected_at": v.SelectedAt,
			"center":      v.Center,
			"area_km2":    v.AreaKm2,
			"width_m":     v.WidthM,
			"height_m":    v.HeightM,
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"selection": &graphql.Field{
				Type:        selectionType,
				Description: "The current area of this session, null when none",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sel, err := deps.Selections.Current(p.Context, sessionFromContext(p.Context))
					if errors.Is(err, domain.ErrNoSelection) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return selection(sel), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"selectManual": &graphql.Field{
				Type:        selectionType,
				Description: "Select an area from four typed edges",
				Args: graphql.FieldConfigArgument{
					"south": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"north": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"west":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"east":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := domain.ManualSelection(
						p.Args["south"].(string),
						p.Args["north"].(string),
						p.Args["west"].(string),
						p.Args["east"].(string),
					)
					sel, err := deps.Selections.Select(p.Context, sessionFromContext(p.Context), in)
					if err != nil {
						return nil, err
					}
					return selection(sel), nil
				},
			},
			"selectDrawn": &graphql.Field{
				Type:        selectionType,
				Description: "Select an area from a drawn GeoJSON polygon",
				Args: graphql.FieldConfigArgument{
					"geojson": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					shape, err := domain.ParseShape([]byte(p.Args["geojson"].(string)))
					if err != nil {
						return nil, err
					}
					sel, err := deps.Selections.Select(p.Context, sessionFromContext(p.Context), domain.DrawnSelection(shape))
					if err != nil {
						return nil, err
					}
					return selection(sel), nil
				},
			},
			"clearSelection": &graphql.Field{
				Type:        graphql.Boolean,
				Description: "Forget the current area",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := deps.Selections.Clear(p.Context, sessionFromContext(p.Context)); err != nil {
						return false, err
					}
					return true, nil
				},
			},
			"download": &graphql.Field{
				Type:        downloadType,
				Description: "Download the DEM raster for the current area",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Downloads.Download(p.Context, sessionFromContext(p.Context))
					if err != nil {
						return nil, err
					}
					v := newDownloadResponse(res)
					return map[string]interface{}{
						"path":        v.Path,
						"bytes":       v.Bytes,
						"size_kb":     v.SizeKB,
						"box":         v.Box,
						"duration_ms": v.DurationMS,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx := context.WithValue(c.UserContext(), sessionCtxKey{}, sessionID(c))
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
