package syogi

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

type MoveRecord struct {
	Ply     int32  `parquet:"name=ply, type=INT32"`
	Move    string `parquet:"name=move, type=BYTE_ARRAY, convertedtype=UTF8"`
	Capture string `parquet:"name=capture, type=BYTE_ARRAY, convertedtype=UTF8"`
	Promote bool   `parquet:"name=promote, type=BOOLEAN"`
}

type GameRecord struct {
	GameID      string       `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Handicap    string       `parquet:"name=handicap, type=BYTE_ARRAY, convertedtype=UTF8"`
	SenteName   string       `parquet:"name=sente_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	GoteName    string       `parquet:"name=gote_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	SenteRating int32        `parquet:"name=sente_rating, type=INT32"`
	GoteRating  int32        `parquet:"name=gote_rating, type=INT32"`
	Result      string       `parquet:"name=result, type=BYTE_ARRAY, convertedtype=UTF8"`
	Reason      string       `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	MoveCount   int32        `parquet:"name=move_count, type=INT32"`
	FinalSFEN   string       `parquet:"name=final_sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	Moves       []MoveRecord `parquet:"name=moves, type=LIST"`
}

type ParquetSchema struct {
	Name   string         `json:"name"`
	Fields []ParquetField `json:"fields"`
}

type ParquetField struct {
	Name     string      `json:"name"`
	Type     interface{} `json:"type"`
	Nullable bool        `json:"nullable"`
}

//go:embed schema/parquet_schema.json
var parquetSchemaJSON []byte

// Record summarises the applied part of the game. tryRule decides whether a
// king on the try square counts as a win.
func (e *Engine) Record(id string, tryRule bool) GameRecord {
	moves := e.Moves()
	records := make([]MoveRecord, 0, len(moves))
	for i, l := range moves {
		capture := ""
		if l.captures() {
			capture = l.Captured.String()
		}
		records = append(records, MoveRecord{
			Ply:     int32(i + 1),
			Move:    l.USI(),
			Capture: capture,
			Promote: l.Promote,
		})
	}
	outcome, reason := e.Result(tryRule)
	return GameRecord{
		GameID:    id,
		Handicap:  e.handicap.String(),
		Result:    outcome.String(),
		Reason:    reason,
		MoveCount: int32(len(moves)),
		FinalSFEN: e.SFEN(),
		Moves:     records,
	}
}

// WriteArchive writes every record received on records to a SNAPPY
// compressed parquet file at path.
func WriteArchive(path string, records <-chan GameRecord, parallel int64) (err error) {
	// On error the rest of records is drained so senders never block.
	defer func() {
		if err != nil {
			for range records {
			}
		}
	}()

	schema, err := loadParquetSchema()
	if err != nil {
		return err
	}
	if err := validateSchema(schema, GameRecord{}); err != nil {
		return err
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(GameRecord), parallel)
	if err != nil {
		fileWriter.Close()
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			fileWriter.Close()
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		fileWriter.Close()
		return err
	}
	return fileWriter.Close()
}

// ReadArchive loads every record of a parquet archive.
func ReadArchive(path string, parallel int64) ([]GameRecord, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(GameRecord), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	records := make([]GameRecord, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]GameRecord, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

func loadParquetSchema() (ParquetSchema, error) {
	var schema ParquetSchema
	if err := json.Unmarshal(parquetSchemaJSON, &schema); err != nil {
		return ParquetSchema{}, fmt.Errorf("parquet schema: %w", err)
	}
	return schema, nil
}

func validateSchema(schema ParquetSchema, sample any) error {
	schemaFields := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		schemaFields[field.Name] = struct{}{}
	}
	structFields := structParquetFieldNames(sample)
	missing := diffKeys(schemaFields, structFields)
	extra := diffKeys(structFields, schemaFields)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("parquet schema mismatch: missing=%v extra=%v", missing, extra)
	}
	return nil
}

func structParquetFieldNames(sample any) map[string]struct{} {
	fields := map[string]struct{}{}
	v := reflect.TypeOf(sample)
	for i := 0; i < v.NumField(); i++ {
		if name := parseParquetName(v.Field(i).Tag.Get("parquet")); name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func parseParquetName(tag string) string {
	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == "name" {
			return kv[1]
		}
	}
	return ""
}

func diffKeys(a, b map[string]struct{}) []string {
	var diff []string
	for key := range a {
		if _, ok := b[key]; !ok {
			diff = append(diff, key)
		}
	}
	sort.Strings(diff)
	return diff
}
