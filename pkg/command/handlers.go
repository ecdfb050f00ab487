package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kass/spatio/pkg/aof"
	"github.com/kass/spatio/pkg/store"
)

// Dependencies are the concrete collaborators every handler closes
// over. AOFPolicy is read-only operational state surfaced by
// CONFIG GET aofsyncpolicy.
type Dependencies struct {
	DB        *store.Database
	AOFPolicy aof.SyncPolicy
	Version   string
}

func (r *Registry) register(d Dependencies) {
	r.add("PING", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 0 {
			return arityError("PING", 0, len(args))
		}
		return SimpleString("PONG")
	}))

	r.add("HELLO", HandlerFunc(func(ctx context.Context, args []string) Reply {
		version := d.Version
		if version == "" {
			version = "dev"
		}
		return BulkString(fmt.Sprintf("spatio %s", version))
	}))

	r.add("QUIT", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 0 {
			return arityError("QUIT", 0, len(args))
		}
		reply := OK()
		reply.CloseAfter = true
		return reply
	}))

	r.add("SET", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 3 {
			return arityError("SET", 3, len(args))
		}
		collection, key, geojsonText := args[0], args[1], args[2]
		if _, err := d.DB.Set(ctx, collection, key, geojsonText); err != nil {
			return errReply(err)
		}
		return OK()
	}))

	r.add("GET", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 2 {
			return arityError("GET", 2, len(args))
		}
		text, ok := d.DB.Get(args[0], args[1])
		if !ok {
			return NilReply()
		}
		return BulkString(text)
	}))

	r.add("DELETE", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 2 {
			return arityError("DELETE", 2, len(args))
		}
		removed, err := d.DB.Delete(ctx, args[0], args[1])
		if err != nil {
			return errReply(err)
		}
		return boolInteger(removed)
	}))

	r.add("DROP", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 1 {
			return arityError("DROP", 1, len(args))
		}
		return boolInteger(d.DB.Drop(args[0]))
	}))

	r.add("KEYS", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 0 {
			return arityError("KEYS", 0, len(args))
		}
		keys := d.DB.Keys()
		items := make([]Reply, len(keys))
		for i, k := range keys {
			items[i] = BulkString(k)
		}
		return ArrayOf(items...)
	}))

	r.add("INTERSECTS", HandlerFunc(func(ctx context.Context, args []string) Reply {
		return spatialQuery(ctx, "INTERSECTS", args, d.DB.Intersects)
	}))

	r.add("WITHIN", HandlerFunc(func(ctx context.Context, args []string) Reply {
		return spatialQuery(ctx, "WITHIN", args, d.DB.Within)
	}))

	r.add("NEARBY", HandlerFunc(func(ctx context.Context, args []string) Reply {
		return nearby(ctx, args, d.DB)
	}))

	r.add("FLUSHDB", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 0 {
			return arityError("FLUSHDB", 0, len(args))
		}
		return Integer(int64(d.DB.FlushAll()))
	}))

	r.add("STATS", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 0 {
			return arityError("STATS", 0, len(args))
		}
		s := d.DB.Stats()
		return ArrayOf(
			BulkString("commands_processed"), Integer(s.CommandsProcessed),
			BulkString("collections"), Integer(int64(s.Collections)),
			BulkString("items"), Integer(int64(s.Items)),
			BulkString("uptime_seconds"), BulkString(strconv.FormatFloat(s.UptimeSeconds, 'f', 3, 64)),
		)
	}))

	r.add("CONFIG", HandlerFunc(func(ctx context.Context, args []string) Reply {
		if len(args) != 2 {
			return arityError("CONFIG", 2, len(args))
		}
		if !strings.EqualFold(args[0], "GET") {
			return Errorf("ERR CONFIG %s is read-only; only GET is supported", args[0])
		}
		if !strings.EqualFold(args[1], "aofsyncpolicy") {
			return Errorf("ERR unknown config parameter '%s'", args[1])
		}
		return BulkString(d.AOFPolicy.String())
	}))
}

type spatialFunc func(ctx context.Context, collection, geojsonText string) ([]store.Pair, error)

// spatialQuery implements the shared INTERSECTS/WITHIN shape: a plain
// array of GeoJSON texts, or an interleaved [key, geojson, ...] array
// when WITHKEYS is given as the optional third argument.
func spatialQuery(ctx context.Context, name string, args []string, query spatialFunc) Reply {
	withKeys := false
	switch len(args) {
	case 2:
	case 3:
		if !strings.EqualFold(args[2], "WITHKEYS") {
			return Errorf("ERR syntax error near '%s'", args[2])
		}
		withKeys = true
	default:
		return arityError(name, 2, len(args))
	}

	pairs, err := query(ctx, args[0], args[1])
	if err != nil {
		return errReply(err)
	}

	if withKeys {
		items := make([]Reply, 0, len(pairs)*2)
		for _, p := range pairs {
			items = append(items, BulkString(p.Key), BulkString(p.GeoJSON))
		}
		return ArrayOf(items...)
	}
	items := make([]Reply, len(pairs))
	for i, p := range pairs {
		items[i] = BulkString(p.GeoJSON)
	}
	return ArrayOf(items...)
}

// nearby parses "NEARBY <collection> POINT <lon> <lat> [COUNT k] [RADIUS meters]".
func nearby(ctx context.Context, args []string, db *store.Database) Reply {
	if len(args) < 4 {
		return arityError("NEARBY", 4, len(args))
	}
	collection := args[0]
	if !strings.EqualFold(args[1], "POINT") {
		return Errorf("ERR syntax error near '%s'", args[1])
	}
	lon, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return Errorf("ERR invalid longitude '%s'", args[2])
	}
	lat, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return Errorf("ERR invalid latitude '%s'", args[3])
	}

	var count *int
	var radius *float64
	rest := args[4:]
	for len(rest) > 0 {
		switch {
		case strings.EqualFold(rest[0], "COUNT") && len(rest) >= 2:
			k, err := strconv.Atoi(rest[1])
			if err != nil || k < 0 {
				return Errorf("ERR invalid COUNT '%s'", rest[1])
			}
			count = &k
			rest = rest[2:]
		case strings.EqualFold(rest[0], "RADIUS") && len(rest) >= 2:
			m, err := strconv.ParseFloat(rest[1], 64)
			if err != nil || m < 0 {
				return Errorf("ERR invalid RADIUS '%s'", rest[1])
			}
			radius = &m
			rest = rest[2:]
		default:
			return Errorf("ERR syntax error near '%s'", rest[0])
		}
	}
	if count == nil && radius == nil {
		return Errorf("ERR NEARBY requires at least one of COUNT or RADIUS")
	}

	results, err := db.Nearby(ctx, collection, lon, lat, count, radius)
	if err != nil {
		return errReply(err)
	}
	items := make([]Reply, 0, len(results)*3)
	for _, r := range results {
		items = append(items, BulkString(r.Key), BulkString(r.GeoJSON), BulkString(strconv.FormatFloat(r.DistanceM, 'f', 3, 64)))
	}
	return ArrayOf(items...)
}

func boolInteger(b bool) Reply {
	if b {
		return Integer(1)
	}
	return Integer(0)
}

// errReply maps a geometry/store failure (InvalidGeoJSON, Timeout) to
// the ERR-prefixed protocol reply spec.md §7 requires.
func errReply(err error) Reply {
	return Errorf("ERR %s", err.Error())
}
