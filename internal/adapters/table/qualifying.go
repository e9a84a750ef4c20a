package table

import (
	"fmt"
	"io"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/upcoming"
)

// ReadQualifying parses a qualifying sheet: driver_id and grid_position, with
// optional qualifying time, constructor_id and driver_code. Rows keep file order.
func ReadQualifying(r io.Reader) ([]upcoming.Qualifier, error) {
	f, err := readFrame(r, TableQualifying)
	if err != nil {
		return nil, err
	}
	if len(f.header) == 0 {
		return nil, nil
	}
	if err := f.require(model.ColDriverID, model.ColGridPosition); err != nil {
		return nil, err
	}

	out := make([]upcoming.Qualifier, f.rows)
	for i := range out {
		q := upcoming.Qualifier{
			DriverCode:    f.text(model.ColDriverCode, i),
			ConstructorID: f.text(model.ColConstructorID, i),
			Qualifying:    f.cell(model.ColQualifying, i),
		}
		var ok bool
		if q.DriverID, ok = parseInt(f.cell(model.ColDriverID, i)); !ok {
			return nil, fmt.Errorf("%w: %s row %d: driver_id %q", ErrInvalidValue, f.table, i, f.cell(model.ColDriverID, i))
		}
		q.GridPosition, _ = parseInt(f.cell(model.ColGridPosition, i))
		out[i] = q
	}
	return out, nil
}
