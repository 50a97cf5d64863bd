package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cloudzeus/kimoncrm-sub005/common/database"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/google/uuid"
)

type PostgresCablingRepository struct {
	db *sql.DB
}

func NewPostgresCablingRepository(db *sql.DB) *PostgresCablingRepository {
	return &PostgresCablingRepository{db: db}
}

var _ CablingRepository = (*PostgresCablingRepository)(nil)

const (
	cablingBuildingsSQL = `SELECT id, name, code, address, notes FROM cabling_buildings
		WHERE survey_id = $1 ORDER BY position`
	cablingFloorsSQL = `SELECT f.id, f.building_id, f.name, f.level, f.notes FROM cabling_floors f
		JOIN cabling_buildings b ON b.id = f.building_id
		WHERE b.survey_id = $1 ORDER BY f.position`
	cablingRacksSQL = `SELECT r.id, r.building_id, r.floor_id, r.name, r.location, r.units, r.notes FROM cabling_racks r
		JOIN cabling_buildings b ON b.id = r.building_id
		WHERE b.survey_id = $1 ORDER BY r.position`
	cablingRoomsSQL = `SELECT r.id, r.floor_id, r.name, r.type, r.outlets, r.notes FROM cabling_rooms r
		JOIN cabling_floors f ON f.id = r.floor_id
		JOIN cabling_buildings b ON b.id = f.building_id
		WHERE b.survey_id = $1 ORDER BY r.position`
	cablingDevicesSQL = `SELECT d.id, d.rack_id, d.room_id, d.product_id, d.name, d.type, d.brand, d.model, d.quantity, d.notes
		FROM cabling_devices d
		LEFT JOIN cabling_racks ra ON ra.id = d.rack_id
		LEFT JOIN cabling_rooms ro ON ro.id = d.room_id
		LEFT JOIN cabling_floors f ON f.id = ro.floor_id
		JOIN cabling_buildings b ON b.id = COALESCE(ra.building_id, f.building_id)
		WHERE b.survey_id = $1 ORDER BY d.position`
	cablingImagesSQL = `SELECT entity_id, url, caption FROM cabling_images
		WHERE survey_id = $1 ORDER BY position`
)

func (r *PostgresCablingRepository) LoadTree(ctx context.Context, surveyID string) (*domain.CablingTree, error) {
	tree := &domain.CablingTree{SurveyID: surveyID, Buildings: []domain.CablingBuilding{}}

	images := map[string][]domain.CablingImage{}
	err := r.each(ctx, cablingImagesSQL, surveyID, func(rows *sql.Rows) error {
		var entityID string
		var img domain.CablingImage
		if err := rows.Scan(&entityID, &img.URL, &img.Caption); err != nil {
			return err
		}
		images[entityID] = append(images[entityID], img)
		return nil
	})
	if err != nil {
		return nil, mapError("load cabling images", err)
	}

	devicesByRack := map[string][]domain.CablingDevice{}
	devicesByRoom := map[string][]domain.CablingDevice{}
	err = r.each(ctx, cablingDevicesSQL, surveyID, func(rows *sql.Rows) error {
		var d domain.CablingDevice
		var rackID, roomID sql.NullString
		if err := rows.Scan(&d.ID, &rackID, &roomID, &d.ProductID, &d.Name, &d.Type, &d.Brand, &d.Model, &d.Quantity, &d.Notes); err != nil {
			return err
		}
		if rackID.Valid {
			devicesByRack[rackID.String] = append(devicesByRack[rackID.String], d)
		} else {
			devicesByRoom[roomID.String] = append(devicesByRoom[roomID.String], d)
		}
		return nil
	})
	if err != nil {
		return nil, mapError("load cabling devices", err)
	}

	roomsByFloor := map[string][]domain.CablingRoom{}
	err = r.each(ctx, cablingRoomsSQL, surveyID, func(rows *sql.Rows) error {
		var rm domain.CablingRoom
		var floorID string
		if err := rows.Scan(&rm.ID, &floorID, &rm.Name, &rm.Type, &rm.Outlets, &rm.Notes); err != nil {
			return err
		}
		rm.Devices = devicesByRoom[rm.ID]
		rm.Images = images[rm.ID]
		roomsByFloor[floorID] = append(roomsByFloor[floorID], rm)
		return nil
	})
	if err != nil {
		return nil, mapError("load cabling rooms", err)
	}

	racksByFloor := map[string][]domain.CablingRack{}
	centralRacks := map[string][]domain.CablingRack{}
	err = r.each(ctx, cablingRacksSQL, surveyID, func(rows *sql.Rows) error {
		var rk domain.CablingRack
		var buildingID string
		var floorID sql.NullString
		if err := rows.Scan(&rk.ID, &buildingID, &floorID, &rk.Name, &rk.Location, &rk.Units, &rk.Notes); err != nil {
			return err
		}
		rk.Devices = devicesByRack[rk.ID]
		rk.Images = images[rk.ID]
		if floorID.Valid {
			racksByFloor[floorID.String] = append(racksByFloor[floorID.String], rk)
		} else {
			centralRacks[buildingID] = append(centralRacks[buildingID], rk)
		}
		return nil
	})
	if err != nil {
		return nil, mapError("load cabling racks", err)
	}

	floorsByBuilding := map[string][]domain.CablingFloor{}
	err = r.each(ctx, cablingFloorsSQL, surveyID, func(rows *sql.Rows) error {
		var f domain.CablingFloor
		var buildingID string
		if err := rows.Scan(&f.ID, &buildingID, &f.Name, &f.Level, &f.Notes); err != nil {
			return err
		}
		f.Racks = racksByFloor[f.ID]
		f.Rooms = roomsByFloor[f.ID]
		f.Images = images[f.ID]
		floorsByBuilding[buildingID] = append(floorsByBuilding[buildingID], f)
		return nil
	})
	if err != nil {
		return nil, mapError("load cabling floors", err)
	}

	err = r.each(ctx, cablingBuildingsSQL, surveyID, func(rows *sql.Rows) error {
		var b domain.CablingBuilding
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.Notes); err != nil {
			return err
		}
		b.CentralRacks = centralRacks[b.ID]
		b.Floors = floorsByBuilding[b.ID]
		b.Images = images[b.ID]
		tree.Buildings = append(tree.Buildings, b)
		return nil
	})
	if err != nil {
		return nil, mapError("load cabling buildings", err)
	}

	tree.Normalize()
	return tree, nil
}

func (r *PostgresCablingRepository) each(ctx context.Context, query, surveyID string, fn func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveTree deletes the survey's current nodes (children cascade) and writes the
// payload back with its ids, so unchanged nodes keep their identity.
func (r *PostgresCablingRepository) SaveTree(ctx context.Context, tree *domain.CablingTree) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cabling_images WHERE survey_id = $1`, tree.SurveyID); err != nil {
			return mapError("clear cabling images", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cabling_buildings WHERE survey_id = $1`, tree.SurveyID); err != nil {
			return mapError("clear cabling buildings", err)
		}
		w := &cablingWriter{ctx: ctx, tx: tx, surveyID: tree.SurveyID}
		for i := range tree.Buildings {
			if err := w.building(&tree.Buildings[i], i); err != nil {
				return err
			}
		}
		return nil
	})
}

type cablingWriter struct {
	ctx      context.Context
	tx       *sql.Tx
	surveyID string
}

// ensureID keeps a client-supplied uuid and replaces anything else.
func ensureID(id *string) {
	if _, err := uuid.Parse(*id); err != nil {
		*id = uuid.NewString()
	}
}

func (w *cablingWriter) exec(op, query string, args ...any) error {
	if _, err := w.tx.ExecContext(w.ctx, query, args...); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (w *cablingWriter) building(b *domain.CablingBuilding, pos int) error {
	ensureID(&b.ID)
	err := w.exec("insert cabling building",
		`INSERT INTO cabling_buildings (id, survey_id, name, code, address, notes, position) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, w.surveyID, b.Name, b.Code, b.Address, b.Notes, pos)
	if err != nil {
		return err
	}
	if err := w.images(domain.CablingEntityBuilding, b.ID, b.Images); err != nil {
		return err
	}
	for i := range b.CentralRacks {
		if err := w.rack(&b.CentralRacks[i], b.ID, nil, i); err != nil {
			return err
		}
	}
	for i := range b.Floors {
		if err := w.floor(&b.Floors[i], b.ID, i); err != nil {
			return err
		}
	}
	return nil
}

func (w *cablingWriter) floor(f *domain.CablingFloor, buildingID string, pos int) error {
	ensureID(&f.ID)
	err := w.exec("insert cabling floor",
		`INSERT INTO cabling_floors (id, building_id, name, level, notes, position) VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, buildingID, f.Name, f.Level, f.Notes, pos)
	if err != nil {
		return err
	}
	if err := w.images(domain.CablingEntityFloor, f.ID, f.Images); err != nil {
		return err
	}
	for i := range f.Racks {
		if err := w.rack(&f.Racks[i], buildingID, &f.ID, i); err != nil {
			return err
		}
	}
	for i := range f.Rooms {
		if err := w.room(&f.Rooms[i], f.ID, i); err != nil {
			return err
		}
	}
	return nil
}

func (w *cablingWriter) rack(rk *domain.CablingRack, buildingID string, floorID *string, pos int) error {
	ensureID(&rk.ID)
	err := w.exec("insert cabling rack",
		`INSERT INTO cabling_racks (id, building_id, floor_id, name, location, units, notes, position) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rk.ID, buildingID, floorID, rk.Name, rk.Location, rk.Units, rk.Notes, pos)
	if err != nil {
		return err
	}
	if err := w.images(domain.CablingEntityRack, rk.ID, rk.Images); err != nil {
		return err
	}
	return w.devices(rk.Devices, &rk.ID, nil)
}

func (w *cablingWriter) room(rm *domain.CablingRoom, floorID string, pos int) error {
	ensureID(&rm.ID)
	err := w.exec("insert cabling room",
		`INSERT INTO cabling_rooms (id, floor_id, name, type, outlets, notes, position) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rm.ID, floorID, rm.Name, rm.Type, rm.Outlets, rm.Notes, pos)
	if err != nil {
		return err
	}
	if err := w.images(domain.CablingEntityRoom, rm.ID, rm.Images); err != nil {
		return err
	}
	return w.devices(rm.Devices, nil, &rm.ID)
}

func (w *cablingWriter) devices(devices []domain.CablingDevice, rackID, roomID *string) error {
	for i := range devices {
		d := &devices[i]
		ensureID(&d.ID)
		err := w.exec("insert cabling device",
			`INSERT INTO cabling_devices (id, rack_id, room_id, product_id, name, type, brand, model, quantity, notes, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			d.ID, rackID, roomID, d.ProductID, d.Name, d.Type, d.Brand, d.Model, d.Quantity, d.Notes, i)
		if err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
	}
	return nil
}

func (w *cablingWriter) images(entityType, entityID string, images []domain.CablingImage) error {
	for i, img := range images {
		err := w.exec("insert cabling image",
			`INSERT INTO cabling_images (survey_id, entity_type, entity_id, url, caption, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			w.surveyID, entityType, entityID, img.URL, img.Caption, i)
		if err != nil {
			return err
		}
	}
	return nil
}
