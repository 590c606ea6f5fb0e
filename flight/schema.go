package flight

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hangar-lab/demandview-go/aggregate"
	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/project"
)

// demandSchema describes aggregation view streams: one row per
// (key, ship year) bucket.
var demandSchema = arrow.NewSchema([]arrow.Field{
	{Name: "key", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "year", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "count", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
}, nil)

// tableSchema describes the level-1 table view streams: one row per
// (key, part, ship year) bucket.
var tableSchema = arrow.NewSchema([]arrow.Field{
	{Name: "key", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "part_number", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "description", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	{Name: "demand", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
}, nil)

// flatSchema describes the flattened BOM stream: one row per part node.
var flatSchema = arrow.NewSchema([]arrow.Field{
	{Name: "program", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "config", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "module", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "part_number", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "description", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "level", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	{Name: "supplier", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "rm_supplier", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "raw_type", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "hw_owners", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
	{Name: "qpe", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
}, nil)

// viewSchema returns the Arrow schema a view streams.
func viewSchema(view string) *arrow.Schema {
	switch view {
	case ViewSupplierTable, ViewHWOwnerTable:
		return tableSchema
	case ViewFlatBOM:
		return flatSchema
	default:
		return demandSchema
	}
}

// buildDemandRecord materializes a projected aggregation result as one
// Arrow record. Rows are emitted in label order, years ascending, zero
// buckets skipped.
func buildDemandRecord(allocator memory.Allocator, res *project.Result) arrow.Record {
	builder := array.NewRecordBuilder(allocator, demandSchema)
	defer builder.Release()

	keyBuilder := builder.Field(0).(*array.StringBuilder)
	yearBuilder := builder.Field(1).(*array.StringBuilder)
	countBuilder := builder.Field(2).(*array.Int64Builder)

	for i, label := range res.Labels {
		for _, year := range res.Years {
			count := res.Series[year][i]
			if count == 0 {
				continue
			}
			keyBuilder.Append(label)
			yearBuilder.Append(year)
			countBuilder.Append(int64(count))
		}
	}

	return builder.NewRecord()
}

// buildTableRecord materializes sorted table rows as one Arrow record.
func buildTableRecord(allocator memory.Allocator, rows []aggregate.TableRow) arrow.Record {
	builder := array.NewRecordBuilder(allocator, tableSchema)
	defer builder.Release()

	keyBuilder := builder.Field(0).(*array.StringBuilder)
	partBuilder := builder.Field(1).(*array.StringBuilder)
	descBuilder := builder.Field(2).(*array.StringBuilder)
	yearBuilder := builder.Field(3).(*array.Int32Builder)
	demandBuilder := builder.Field(4).(*array.Int64Builder)

	for _, row := range rows {
		for _, year := range project.RowYears([]aggregate.TableRow{row}) {
			keyBuilder.Append(row.Key)
			partBuilder.Append(row.PartNumber)
			if row.Description == "" {
				descBuilder.AppendNull()
			} else {
				descBuilder.Append(row.Description)
			}
			yearBuilder.Append(int32(year))
			demandBuilder.Append(int64(row.YearCounts[year]))
		}
	}

	return builder.NewRecord()
}

// buildFlatRecords materializes the flattened BOM in batches so a large
// dataset never becomes one oversized record.
func buildFlatRecords(allocator memory.Allocator, parts []bom.FlatPart, batchSize int) []arrow.Record {
	if batchSize <= 0 {
		batchSize = flatBatchSize
	}

	var records []arrow.Record
	for start := 0; start < len(parts); start += batchSize {
		end := start + batchSize
		if end > len(parts) {
			end = len(parts)
		}
		records = append(records, buildFlatRecord(allocator, parts[start:end]))
	}
	return records
}

func buildFlatRecord(allocator memory.Allocator, parts []bom.FlatPart) arrow.Record {
	builder := array.NewRecordBuilder(allocator, flatSchema)
	defer builder.Release()

	programBuilder := builder.Field(0).(*array.StringBuilder)
	configBuilder := builder.Field(1).(*array.StringBuilder)
	moduleBuilder := builder.Field(2).(*array.StringBuilder)
	partBuilder := builder.Field(3).(*array.StringBuilder)
	descBuilder := builder.Field(4).(*array.StringBuilder)
	levelBuilder := builder.Field(5).(*array.Int32Builder)
	supplierBuilder := builder.Field(6).(*array.StringBuilder)
	rmSupplierBuilder := builder.Field(7).(*array.StringBuilder)
	rawTypeBuilder := builder.Field(8).(*array.StringBuilder)
	ownersBuilder := builder.Field(9).(*array.ListBuilder)
	ownerValueBuilder := ownersBuilder.ValueBuilder().(*array.StringBuilder)
	qpeBuilder := builder.Field(10).(*array.Int32Builder)

	appendOptional := func(b *array.StringBuilder, v string) {
		if v == "" {
			b.AppendNull()
		} else {
			b.Append(v)
		}
	}

	for _, p := range parts {
		programBuilder.Append(p.Program)
		configBuilder.Append(p.Config)
		moduleBuilder.Append(p.Module)
		partBuilder.Append(p.PartNumber)
		appendOptional(descBuilder, p.Description)
		levelBuilder.Append(int32(p.Level))
		appendOptional(supplierBuilder, p.Supplier)
		appendOptional(rmSupplierBuilder, p.RMSupplier)
		appendOptional(rawTypeBuilder, p.RawType)
		if len(p.HWOwners) == 0 {
			ownersBuilder.AppendNull()
		} else {
			ownersBuilder.Append(true)
			for _, owner := range p.HWOwners {
				ownerValueBuilder.Append(owner)
			}
		}
		qpeBuilder.Append(int32(p.QPE))
	}

	return builder.NewRecord()
}
