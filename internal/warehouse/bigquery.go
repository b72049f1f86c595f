package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// BigQuery implements Service against a single project/dataset pair.
type BigQuery struct {
	client  *bigquery.Client
	project string
	dataset string
	logger  *zap.Logger
}

// NewBigQuery wraps an existing client. The project and dataset are
// substituted into the {project}/{dataset} placeholders of every
// statement.
func NewBigQuery(client *bigquery.Client, project, dataset string, logger *zap.Logger) *BigQuery {
	return &BigQuery{
		client:  client,
		project: project,
		dataset: dataset,
		logger:  logger,
	}
}

// formatSQL substitutes the placeholders by plain replacement. Statement
// text regularly embeds user data containing braces, so template-style
// formatting is off the table.
func (b *BigQuery) formatSQL(sql string) string {
	sql = strings.ReplaceAll(sql, "{project}", b.project)
	return strings.ReplaceAll(sql, "{dataset}", b.dataset)
}

func toQueryParameters(params []Param) []bigquery.QueryParameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]bigquery.QueryParameter, len(params))
	for i, p := range params {
		out[i] = bigquery.QueryParameter{Name: p.Name, Value: p.Value}
	}
	return out
}

// RunQuery executes a SELECT and materializes all rows.
func (b *BigQuery) RunQuery(ctx context.Context, sql string, params ...Param) ([]Row, error) {
	q := b.client.Query(b.formatSQL(sql))
	q.Parameters = toQueryParameters(params)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("warehouse query: %w", err)
	}
	var rows []Row
	for {
		var vals map[string]bigquery.Value
		err := it.Next(&vals)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("warehouse query iterate: %w", err)
		}
		row := make(Row, len(vals))
		for k, v := range vals {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RunMerge executes a DML statement and returns the affected-row count.
func (b *BigQuery) RunMerge(ctx context.Context, sql string, params ...Param) (int64, error) {
	q := b.client.Query(b.formatSQL(sql))
	q.Parameters = toQueryParameters(params)
	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("warehouse merge: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("warehouse merge wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("warehouse merge job: %w", err)
	}
	var affected int64
	if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		affected = qs.NumDMLAffectedRows
	}
	b.logger.Debug("merge executed", zap.Int64("affected_rows", affected))
	return affected, nil
}

type rowSaver struct {
	row Row
}

func (s rowSaver) Save() (map[string]bigquery.Value, string, error) {
	vals := make(map[string]bigquery.Value, len(s.row))
	for k, v := range s.row {
		vals[k] = v
	}
	return vals, "", nil
}

// AppendRows streams rows into the named table.
func (b *BigQuery) AppendRows(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	savers := make([]rowSaver, len(rows))
	for i, r := range rows {
		savers[i] = rowSaver{row: r}
	}
	ins := b.client.Dataset(b.dataset).Table(table).Inserter()
	if err := ins.Put(ctx, savers); err != nil {
		return fmt.Errorf("warehouse append to %s: %w", table, err)
	}
	b.logger.Debug("rows appended", zap.String("table", table), zap.Int("rows", len(rows)))
	return nil
}

// CreateTable creates the table with its partitioning and clustering.
// An already-existing table is not an error.
func (b *BigQuery) CreateTable(ctx context.Context, name string, def TableDef) error {
	meta := &bigquery.TableMetadata{Schema: def.Schema}
	if def.PartitionField != "" {
		meta.TimePartitioning = &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: def.PartitionField,
		}
	}
	if len(def.ClusterFields) > 0 {
		meta.Clustering = &bigquery.Clustering{Fields: def.ClusterFields}
	}
	err := b.client.Dataset(b.dataset).Table(name).Create(ctx, meta)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
			b.logger.Debug("table already exists", zap.String("table", name))
			return nil
		}
		return fmt.Errorf("warehouse create table %s: %w", name, err)
	}
	b.logger.Info("table created", zap.String("table", name))
	return nil
}
