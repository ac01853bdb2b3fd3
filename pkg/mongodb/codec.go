package mongodb

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var tUint64 = reflect.TypeOf(uint64(0))

// Registry is the BSON registry the client encodes with. The default codecs
// refuse uint64 values above MaxInt64; this one stores every uint64 as the
// int64 with the same bits, so seeds and balances keep their full range.
// Stored values above MaxInt64 read as negative in the shell.
var Registry = bson.NewRegistryBuilder().
	RegisterTypeEncoder(tUint64, bsoncodec.ValueEncoderFunc(encodeUint64)).
	RegisterTypeDecoder(tUint64, bsoncodec.ValueDecoderFunc(decodeUint64)).
	Build()

func encodeUint64(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if val.Kind() != reflect.Uint64 {
		return bsoncodec.ValueEncoderError{Name: "encodeUint64", Kinds: []reflect.Kind{reflect.Uint64}, Received: val}
	}
	return vw.WriteInt64(int64(val.Uint()))
}

func decodeUint64(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Kind() != reflect.Uint64 {
		return bsoncodec.ValueDecoderError{Name: "decodeUint64", Kinds: []reflect.Kind{reflect.Uint64}, Received: val}
	}

	var u uint64
	switch t := vr.Type(); t {
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		u = uint64(i)
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("cannot decode negative int32 %d into a uint64", i)
		}
		u = uint64(i)
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode BSON %s into a uint64", t)
	}
	val.SetUint(u)
	return nil
}
