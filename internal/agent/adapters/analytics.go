package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/google/uuid"

	"github.com/iot-fleet-chat/server/internal/agent/model"
	errx "github.com/iot-fleet-chat/server/internal/core/error"
	logx "github.com/iot-fleet-chat/server/pkg/logger"
)

// AnalyticsAPI is the subset of the Athena client the adapter depends on.
type AnalyticsAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
	StopQueryExecution(ctx context.Context, params *athena.StopQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StopQueryExecutionOutput, error)
}

// Analytics adapts the asynchronous historical query engine: submit, poll
// until completion or deadline, fetch capped rows. Abandoned queries are
// cancelled so no orphaned backend work is left behind.
type Analytics struct {
	api AnalyticsAPI
	cfg model.AnalyticsConfig
}

func NewAnalytics(api AnalyticsAPI, cfg model.AnalyticsConfig) *Analytics {
	return &Analytics{api: api, cfg: cfg}
}

// LatestPosition returns the newest GPS fix for a device, nil when the data
// lake holds no rows for it.
func (a *Analytics) LatestPosition(ctx context.Context, deviceID string) (*model.GPSPosition, error) {
	query := fmt.Sprintf(
		"SELECT latitude, longitude, altitude, timestamp FROM %s.%s WHERE %s = '%s' ORDER BY timestamp DESC LIMIT 1",
		a.cfg.Database, a.cfg.Table, a.cfg.PartitionKey, sqlLiteral(deviceID),
	)

	rows, err := a.run(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	p, ok := parseLocationRow(rows[0])
	if !ok {
		return nil, errx.Internal(fmt.Errorf("malformed GPS row for device %s", deviceID))
	}
	return &model.GPSPosition{Latitude: p.Latitude, Longitude: p.Longitude, Altitude: p.Altitude, Timestamp: p.Timestamp}, nil
}

// LocationHistory returns positions within the query's time range, newest
// first, capped by configuration.
func (a *Analytics) LocationHistory(ctx context.Context, q model.LocationQuery) ([]model.LocationPoint, error) {
	limit := q.Limit
	if limit <= 0 || limit > a.cfg.MaxRows {
		limit = a.cfg.MaxRows
	}

	query := fmt.Sprintf(
		"SELECT latitude, longitude, altitude, timestamp FROM %s.%s WHERE %s = '%s' AND timestamp >= '%s' AND timestamp <= '%s' ORDER BY timestamp DESC LIMIT %d",
		a.cfg.Database, a.cfg.Table, a.cfg.PartitionKey,
		sqlLiteral(q.DeviceID), sqlLiteral(q.Start), sqlLiteral(q.End), limit,
	)

	rows, err := a.run(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	points := make([]model.LocationPoint, 0, len(rows))
	for _, row := range rows {
		if p, ok := parseLocationRow(row); ok {
			points = append(points, p)
		} else {
			logx.Warn().Str("device", q.DeviceID).Msg("skipping malformed location row")
		}
	}
	return points, nil
}

// run executes one bounded query end to end and returns data rows (header
// stripped), at most limit of them.
func (a *Analytics) run(ctx context.Context, query string, limit int) ([][]string, error) {
	id, err := a.submit(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := a.awaitCompletion(ctx, id); err != nil {
		return nil, err
	}
	return a.fetchRows(ctx, id, limit)
}

func (a *Analytics) submit(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SubmitTimeout)
	defer cancel()

	out, err := a.api.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:           aws.String(query),
		ClientRequestToken:    aws.String(uuid.NewString()),
		QueryExecutionContext: &types.QueryExecutionContext{Database: aws.String(a.cfg.Database)},
		ResultConfiguration:   &types.ResultConfiguration{OutputLocation: aws.String(a.cfg.OutputLocation)},
	})
	if err != nil {
		return "", errx.WrapAnalytics("submit query", err)
	}
	return aws.ToString(out.QueryExecutionId), nil
}

// awaitCompletion polls the query until a terminal state or the poll deadline.
// On deadline the query handle is cancelled before returning the timeout.
func (a *Analytics) awaitCompletion(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.PollDeadline)
	defer cancel()

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		out, err := a.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: aws.String(id)})
		if err != nil {
			if ctx.Err() != nil {
				a.cancelQuery(id)
			}
			return errx.WrapAnalytics("poll query", err)
		}

		state := types.QueryExecutionStateQueued
		var reason string
		if out.QueryExecution != nil && out.QueryExecution.Status != nil {
			state = out.QueryExecution.Status.State
			reason = aws.ToString(out.QueryExecution.Status.StateChangeReason)
		}

		switch state {
		case types.QueryExecutionStateSucceeded:
			return nil
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			logx.Error().Str("query_execution_id", id).Str("reason", reason).Msg("analytics query did not succeed")
			return errx.Unavailable("analytics query", fmt.Errorf("query %s: %s", state, reason))
		}

		select {
		case <-ctx.Done():
			a.cancelQuery(id)
			return errx.Timeout("analytics query", ctx.Err())
		case <-ticker.C:
		}
	}
}

// cancelQuery abandons a timed-out query on a fresh context so the backend
// does not keep scanning on our behalf.
func (a *Analytics) cancelQuery(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SubmitTimeout)
	defer cancel()
	if _, err := a.api.StopQueryExecution(ctx, &athena.StopQueryExecutionInput{QueryExecutionId: aws.String(id)}); err != nil {
		logx.Warn().Err(err).Str("query_execution_id", id).Msg("failed to cancel analytics query")
	}
}

func (a *Analytics) fetchRows(ctx context.Context, id string, limit int) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SubmitTimeout)
	defer cancel()

	// +1 for the header row Athena prepends to the result set.
	out, err := a.api.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(id),
		MaxResults:       aws.Int32(int32(limit + 1)),
	})
	if err != nil {
		return nil, errx.WrapAnalytics("fetch query results", err)
	}
	if out.ResultSet == nil || len(out.ResultSet.Rows) <= 1 {
		return nil, nil
	}

	rows := make([][]string, 0, len(out.ResultSet.Rows)-1)
	for _, row := range out.ResultSet.Rows[1:] {
		if len(rows) >= limit {
			break
		}
		cells := make([]string, 0, len(row.Data))
		for _, datum := range row.Data {
			cells = append(cells, aws.ToString(datum.VarCharValue))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func parseLocationRow(row []string) (model.LocationPoint, bool) {
	if len(row) < 4 {
		return model.LocationPoint{}, false
	}
	lat, err1 := strconv.ParseFloat(row[0], 64)
	lon, err2 := strconv.ParseFloat(row[1], 64)
	alt, err3 := strconv.ParseFloat(row[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return model.LocationPoint{}, false
	}
	return model.LocationPoint{Latitude: lat, Longitude: lon, Altitude: alt, Timestamp: row[3]}, true
}

// sqlLiteral escapes a value for embedding in a single-quoted SQL literal.
func sqlLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
