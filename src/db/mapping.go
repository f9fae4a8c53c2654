package db

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

/*
FetchAllAs executes the query and materializes every result row into a
value of the given struct type. Columns are matched to fields through
their `db:"column"` tag, falling back to the lowercased field name;
result columns with no matching field are ignored. Embedded structs
participate through their promoted fields, pointer fields are allocated
on demand, and NULL columns leave the field at its zero value.

The type argument must be provided explicitly - it is how the mapper
knows what to materialize, and it cannot be inferred.
*/
func FetchAllAs[T any](ctx context.Context, c *Conn, query string, args ...any) ([]*T, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, statementError(query, err)
	}
	plan := planScan(destStructType[T](), names)

	result := []*T{}
	for rows.Next() {
		values, err := scanValues(rows, len(names))
		if err != nil {
			return nil, statementError(query, err)
		}
		item, err := materialize[T](plan, values)
		if err != nil {
			return nil, statementError(query, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, statementError(query, err)
	}
	return result, nil
}

// FetchOneAs is FetchAllAs for the first result row only. ok is false
// when no row matched; that is the "no match" sentinel, not an error.
func FetchOneAs[T any](ctx context.Context, c *Conn, query string, args ...any) (value *T, ok bool, err error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, statementError(query, err)
		}
		return nil, false, nil
	}
	names, err := rows.Columns()
	if err != nil {
		return nil, false, statementError(query, err)
	}
	values, err := scanValues(rows, len(names))
	if err != nil {
		return nil, false, statementError(query, err)
	}
	item, err := materialize[T](planScan(destStructType[T](), names), values)
	if err != nil {
		return nil, false, statementError(query, err)
	}
	return item, true, nil
}

func destStructType[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("can only fetch into a struct type, got %s", t))
	}
	return t
}

// A path to a particular field in the destination type. Each index is
// a field index for use with Field on a reflect.Type or reflect.Value.
type fieldPath []int

// planScan maps each result column to a field path in the destination
// type. A nil path means the column has no matching field and its
// value is discarded.
func planScan(destType reflect.Type, columns []string) []fieldPath {
	byName := fieldPathsByColumn(destType)
	plan := make([]fieldPath, len(columns))
	for i, col := range columns {
		plan[i] = byName[strings.ToLower(col)]
	}
	return plan
}

func fieldPathsByColumn(destType reflect.Type) map[string]fieldPath {
	paths := make(map[string]fieldPath)
	for _, field := range reflect.VisibleFields(destType) {
		if !field.IsExported() || field.Anonymous {
			continue
		}

		name := field.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		} else {
			name = strings.ToLower(name)
		}

		fieldType := field.Type
		if fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}
		if fieldType.Kind() == reflect.Struct && !scalarStructType(fieldType) {
			// Not something a single column can scan into.
			continue
		}

		// First match wins, matching the shadowing rules of promoted
		// fields.
		if _, taken := paths[name]; !taken {
			path := make(fieldPath, len(field.Index))
			copy(path, field.Index)
			paths[name] = path
		}
	}
	return paths
}

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

func scalarStructType(t reflect.Type) bool {
	return t == timeType || t == uuidType
}

func materialize[T any](plan []fieldPath, values []any) (*T, error) {
	item := new(T)
	ptr := reflect.ValueOf(item)
	for i, val := range values {
		if plan[i] == nil || val == nil {
			continue
		}
		field := followFieldPath(ptr, plan[i])
		if err := setValueFromDB(field, val); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// followFieldPath walks a field path from a pointer to the destination
// struct, allocating intermediate and leaf pointers as needed, and
// returns the addressable value to scan into.
func followFieldPath(structPtr reflect.Value, path fieldPath) reflect.Value {
	val := structPtr
	for _, i := range path {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				val.Set(reflect.New(val.Type().Elem()))
			}
			val = val.Elem()
		}
		val = val.Field(i)
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
		}
		val = val.Elem()
	}
	return val
}

// setValueFromDB assigns a driver-produced value to a struct field,
// bridging the few representation gaps drivers leave open: integer
// widths, numeric booleans, []byte text, and textual or binary uuids.
func setValueFromDB(dest reflect.Value, val any) error {
	if dest.Type() == uuidType {
		id, err := uuidFromDB(val)
		if err != nil {
			return err
		}
		dest.Set(reflect.ValueOf(id))
		return nil
	}

	switch dest.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(val)
		if err != nil {
			return fmt.Errorf("column value %v: %w", val, err)
		}
		dest.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toInt64(val)
		if err != nil {
			return fmt.Errorf("column value %v: %w", val, err)
		}
		dest.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		switch v := val.(type) {
		case float64:
			dest.SetFloat(v)
		case float32:
			dest.SetFloat(float64(v))
		case int64:
			dest.SetFloat(float64(v))
		default:
			return fmt.Errorf("cannot assign %T to %s", val, dest.Type())
		}
		return nil
	case reflect.Bool:
		switch v := val.(type) {
		case bool:
			dest.SetBool(v)
		case int64:
			dest.SetBool(v != 0)
		default:
			return fmt.Errorf("cannot assign %T to %s", val, dest.Type())
		}
		return nil
	case reflect.String:
		switch v := val.(type) {
		case string:
			dest.SetString(v)
		case []byte:
			dest.SetString(string(v))
		default:
			return fmt.Errorf("cannot assign %T to %s", val, dest.Type())
		}
		return nil
	}

	src := reflect.ValueOf(val)
	if src.Type().AssignableTo(dest.Type()) {
		dest.Set(src)
		return nil
	}
	if src.Type().ConvertibleTo(dest.Type()) {
		dest.Set(src.Convert(dest.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", val, dest.Type())
}

func uuidFromDB(val any) (uuid.UUID, error) {
	switch v := val.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	default:
		return uuid.UUID{}, fmt.Errorf("cannot read uuid from %T", val)
	}
}

func toInt64(val any) (int64, error) {
	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot read integer from %T", val)
	}
}
