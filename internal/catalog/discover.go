// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	xglog "github.com/ManuGH/seatkeeper/internal/log"
	"github.com/ManuGH/seatkeeper/internal/metrics"
	"github.com/ManuGH/seatkeeper/internal/ratelimit"
	"github.com/ManuGH/seatkeeper/internal/session"
	"github.com/ManuGH/seatkeeper/internal/telemetry"
	"github.com/ManuGH/seatkeeper/internal/window"
	"go.opentelemetry.io/otel/codes"
)

// Requester is the part of the session the discoverer needs.
type Requester interface {
	GetJSON(ctx context.Context, op, rawURL string, v any) error
	PostForm(ctx context.Context, op, rawURL string, form url.Values, v any) error
}

// Endpoints are the catalog URLs of the service.
type Endpoints struct {
	QueryRooms string
	QuerySeats string
}

// Options tunes discovery. Nil pacers fall back to the default intervals.
type Options struct {
	RoomPacer *ratelimit.Pacer
	SeatPacer *ratelimit.Pacer
	Resolver  *window.Resolver
}

// Discoverer walks rooms, then each room's floors and seats. Calls are
// strictly sequential and paced.
type Discoverer struct {
	req       Requester
	endpoints Endpoints
	roomPacer *ratelimit.Pacer
	seatPacer *ratelimit.Pacer
	resolver  *window.Resolver
}

// NewDiscoverer creates a discoverer.
func NewDiscoverer(req Requester, endpoints Endpoints, opts Options) *Discoverer {
	if opts.RoomPacer == nil {
		opts.RoomPacer = ratelimit.NewPacer("catalog_rooms", ratelimit.DefaultRoomInterval)
	}
	if opts.SeatPacer == nil {
		opts.SeatPacer = ratelimit.NewPacer("catalog_seats", ratelimit.DefaultSeatInterval)
	}
	if opts.Resolver == nil {
		opts.Resolver = window.NewResolver(nil)
	}
	return &Discoverer{
		req:       req,
		endpoints: endpoints,
		roomPacer: opts.RoomPacer,
		seatPacer: opts.SeatPacer,
		resolver:  opts.Resolver,
	}
}

// Update discovers rooms and resolves their seats. Any failure aborts the
// whole chain; no partial catalog is returned.
func (d *Discoverer) Update(ctx context.Context) (*Catalog, error) {
	ctx, span := telemetry.Tracer("seatkeeper.catalog").Start(ctx, "seatkeeper.catalog.update")
	defer span.End()

	cat, err := d.DiscoverRooms(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discover rooms")
		return nil, err
	}
	// the last preamble gets the same room interval before seat resolution
	if len(cat.Rooms) > 0 {
		if err := d.roomPacer.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := d.ResolveSeats(ctx, cat); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve seats")
		return nil, err
	}

	rooms, floors, seats := cat.Counts()
	metrics.SetCatalogSize(rooms, floors, seats)
	span.SetAttributes(telemetry.CatalogAttributes(rooms, floors)...)
	logger := xglog.WithComponentFromContext(ctx, "catalog")
	logger.Info().
		Str(xglog.FieldEvent, "catalog.updated").
		Int("rooms", rooms).
		Int("floors", floors).
		Int(xglog.FieldSeats, seats).
		Time("target", cat.Target).
		Msg("catalog updated")
	return cat, nil
}

// DiscoverRooms lists the rooms and fetches each room's seat-map preamble.
func (d *Discoverer) DiscoverRooms(ctx context.Context) (*Catalog, error) {
	logger := xglog.WithComponentFromContext(ctx, "catalog")

	var listing roomsResponse
	if err := d.req.GetJSON(ctx, "query_rooms", d.endpoints.QueryRooms, &listing); err != nil {
		metrics.IncCatalogDiscoveryError("rooms")
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	items, err := listing.items()
	if err != nil {
		metrics.IncCatalogDiscoveryError("rooms")
		return nil, err
	}

	cat := &Catalog{Rooms: make([]*Room, 0, len(items))}
	for _, it := range items {
		query, err := selectorQuery(it)
		if err != nil {
			metrics.IncCatalogDiscoveryError("rooms")
			return nil, err
		}
		cat.Rooms = append(cat.Rooms, &Room{Name: it.Name, Query: query})
	}

	for _, room := range cat.Rooms {
		if err := d.roomPacer.Wait(ctx); err != nil {
			return nil, err
		}
		if err := d.fetchPreamble(ctx, room); err != nil {
			metrics.IncCatalogDiscoveryError("preamble")
			return nil, err
		}
		logger.Debug().
			Str(xglog.FieldRoom, room.Name).
			Str("category_id", room.SpaceCategory.CategoryID).
			Str("content_id", room.SpaceCategory.ContentID).
			Msg("room preamble loaded")
	}
	return cat, nil
}

func (r roomsResponse) items() ([]roomItem, error) {
	if r.Content == nil {
		return nil, session.SchemaMismatch("query_rooms", fmt.Errorf("missing content"))
	}
	if len(r.Content.Children) <= roomsChildIndex {
		return nil, session.SchemaMismatch("query_rooms",
			fmt.Errorf("content.children has %d entries, want > %d", len(r.Content.Children), roomsChildIndex))
	}
	items := r.Content.Children[roomsChildIndex].DefaultItems
	if items == nil {
		return nil, session.SchemaMismatch("query_rooms", fmt.Errorf("missing content.children[%d].defaultItems", roomsChildIndex))
	}
	return items, nil
}

// selectorQuery decodes the room's selector link and keeps its query string.
func selectorQuery(it roomItem) (string, error) {
	if it.Name == "" || it.Link == nil || it.Link.URL == "" {
		return "", session.SchemaMismatch("query_rooms", fmt.Errorf("room item without name or link.url"))
	}
	decoded, err := url.PathUnescape(it.Link.URL)
	if err != nil {
		return "", session.SchemaMismatch("query_rooms", fmt.Errorf("room %q: decode link: %w", it.Name, err))
	}
	_, query, ok := strings.Cut(decoded, "?")
	if !ok {
		return "", session.SchemaMismatch("query_rooms", fmt.Errorf("room %q: link has no query string", it.Name))
	}
	// anything after a second '?' is not part of the selector
	query, _, _ = strings.Cut(query, "?")
	return query, nil
}

func (d *Discoverer) fetchPreamble(ctx context.Context, room *Room) error {
	var res preambleResponse
	if err := d.req.GetJSON(ctx, "query_seats", joinQuery(d.endpoints.QuerySeats, room.Query), &res); err != nil {
		return fmt.Errorf("room %q preamble: %w", room.Name, err)
	}
	if len(res.Data) == 0 || string(res.Data) == "null" {
		return session.SchemaMismatch("query_seats", fmt.Errorf("room %q: missing data", room.Name))
	}
	var data preambleData
	if err := json.Unmarshal(res.Data, &data); err != nil {
		return session.SchemaMismatch("query_seats", fmt.Errorf("room %q: %w", room.Name, err))
	}
	if data.SpaceCategory == nil || data.SpaceCategory.CategoryID == "" || data.SpaceCategory.ContentID == "" {
		return session.SchemaMismatch("query_seats", fmt.Errorf("room %q: missing space_category", room.Name))
	}
	room.Preamble = res.Data
	room.SpaceCategory = SpaceCategory{
		CategoryID: data.SpaceCategory.CategoryID.String(),
		ContentID:  data.SpaceCategory.ContentID.String(),
	}
	return nil
}

// ResolveSeats queries every room's floors and seats for the target time window.
func (d *Discoverer) ResolveSeats(ctx context.Context, cat *Catalog) error {
	logger := xglog.WithComponentFromContext(ctx, "catalog")
	target := d.resolver.Target()

	for _, room := range cat.Rooms {
		if err := d.seatPacer.Wait(ctx); err != nil {
			return err
		}
		floors, err := d.resolveRoom(ctx, room, target)
		if err != nil {
			metrics.IncCatalogDiscoveryError("seats")
			return err
		}
		room.Floors = nil
		for _, f := range floors {
			room.setFloor(f)
			logger.Trace().
				Str(xglog.FieldRoom, room.Name).
				Str(xglog.FieldFloor, f.Name).
				Str(xglog.FieldFloorID, f.ID).
				Int(xglog.FieldSeats, len(f.Seats)).
				Msg("floor resolved")
		}
		logger.Debug().
			Str(xglog.FieldRoom, room.Name).
			Int("floors", len(room.Floors)).
			Msg("room seats resolved")
	}

	cat.Target = target
	cat.ResolvedAt = time.Now()
	return nil
}

func (d *Discoverer) resolveRoom(ctx context.Context, room *Room, target time.Time) ([]*Floor, error) {
	form := url.Values{}
	form.Set("beginTime", strconv.FormatInt(target.Unix(), 10))
	form.Set("duration", "3600")
	form.Set("num", "1")
	form.Set("space_category[category_id]", room.SpaceCategory.CategoryID)
	form.Set("space_category[content_id]", room.SpaceCategory.ContentID)

	var res seatsResponse
	if err := d.req.PostForm(ctx, "query_seats", d.endpoints.QuerySeats, form, &res); err != nil {
		return nil, fmt.Errorf("room %q seats: %w", room.Name, err)
	}
	if res.AllContent == nil || len(res.AllContent.Children) <= floorsChildIndex {
		return nil, session.SchemaMismatch("query_seats", fmt.Errorf("room %q: missing allContent.children[%d]", room.Name, floorsChildIndex))
	}

	var container floorContainer
	if err := json.Unmarshal(res.AllContent.Children[floorsChildIndex], &container); err != nil {
		return nil, session.SchemaMismatch("query_seats", fmt.Errorf("room %q: %w", room.Name, err))
	}
	if container.Children == nil || container.Children.Children == nil {
		return nil, session.SchemaMismatch("query_seats", fmt.Errorf("room %q: missing floor list", room.Name))
	}

	floors := make([]*Floor, 0, len(container.Children.Children))
	for _, rec := range container.Children.Children {
		if rec.RoomName == "" || rec.SeatMap == nil || rec.SeatMap.Info == nil || rec.SeatMap.POIs == nil {
			return nil, session.SchemaMismatch("query_seats", fmt.Errorf("room %q: incomplete floor record", room.Name))
		}
		floors = append(floors, &Floor{
			Name:  rec.RoomName,
			ID:    rec.SeatMap.Info.ID.String(),
			Seats: rec.SeatMap.POIs,
		})
	}
	return floors, nil
}

func joinQuery(base, query string) string {
	if query == "" {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}
