package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type attendanceDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID   primitive.ObjectID `bson:"employee_id"`
	EmpID        string             `bson:"emp_id"`
	EmployeeName string             `bson:"employee_name"`
	Date         string             `bson:"date"`
	CheckIn      time.Time          `bson:"check_in"`
	CheckOut     *time.Time         `bson:"check_out"`
	PhotoPath    *string            `bson:"photo_path,omitempty"`
	Status       string             `bson:"status"`
	Note         string             `bson:"note,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d attendanceDocument) toEntity() attendance.Attendance {
	return attendance.Attendance{
		ID:           hexOrEmpty(d.ID),
		EmployeeID:   hexOrEmpty(d.EmployeeID),
		EmpID:        d.EmpID,
		EmployeeName: d.EmployeeName,
		Date:         d.Date,
		CheckIn:      d.CheckIn,
		CheckOut:     d.CheckOut,
		PhotoPath:    d.PhotoPath,
		Status:       attendance.Status(d.Status),
		Note:         d.Note,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type attendanceRepositoryImpl struct {
	collection *mongo.Collection
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{collection: db.Collection(database.CollectionAttendances)}
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	employeeOID, err := parseID(a.EmployeeID, attendance.ErrAttendanceNotFound)
	if err != nil {
		return attendance.Attendance{}, err
	}

	now := time.Now().UTC()
	doc := attendanceDocument{
		ID:           primitive.NewObjectID(),
		EmployeeID:   employeeOID,
		EmpID:        a.EmpID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date,
		CheckIn:      a.CheckIn.UTC(),
		PhotoPath:    a.PhotoPath,
		Status:       string(a.Status),
		Note:         a.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *attendanceRepositoryImpl) findOne(ctx context.Context, filter bson.M) (attendance.Attendance, error) {
	var doc attendanceDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to find attendance: %w", err)
	}
	return doc.toEntity(), nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	oid, err := parseID(id, attendance.ErrAttendanceNotFound)
	if err != nil {
		return attendance.Attendance{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (attendance.Attendance, error) {
	oid, err := parseID(employeeID, attendance.ErrAttendanceNotFound)
	if err != nil {
		return attendance.Attendance{}, err
	}
	return r.findOne(ctx, bson.M{"employee_id": oid, "date": date})
}

// SetCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) SetCheckOut(ctx context.Context, id string, at time.Time) (attendance.Attendance, error) {
	oid, err := parseID(id, attendance.ErrAttendanceNotFound)
	if err != nil {
		return attendance.Attendance{}, err
	}

	var doc attendanceDocument
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "check_out": nil},
		bson.M{"$set": bson.M{"check_out": at.UTC(), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toEntity(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return attendance.Attendance{}, fmt.Errorf("failed to set check-out on %s: %w", id, err)
	}

	// Either the record is gone or someone already checked out
	if _, err := r.GetByID(ctx, id); err != nil {
		return attendance.Attendance{}, err
	}
	return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
}

func attendanceQuery(filter attendance.AttendanceFilter) bson.M {
	query := bson.M{}
	if filter.EmployeeID != nil {
		if oid, err := primitive.ObjectIDFromHex(*filter.EmployeeID); err == nil {
			query["employee_id"] = oid
		} else {
			query["employee_id"] = primitive.NilObjectID
		}
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	dateRange := bson.M{}
	if filter.Date != nil {
		query["date"] = *filter.Date
	} else {
		if filter.StartDate != nil {
			dateRange["$gte"] = *filter.StartDate
		}
		if filter.EndDate != nil {
			dateRange["$lte"] = *filter.EndDate
		}
		if len(dateRange) > 0 {
			query["date"] = dateRange
		}
	}
	return query
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	query := attendanceQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sort := bson.D{{Key: "date", Value: -1}, {Key: "check_in", Value: -1}}
	cursor, err := r.collection.Find(ctx, query, paginate(filter.Page, filter.Limit, sort))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attendances: %w", err)
	}

	records := make([]attendance.Attendance, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toEntity())
	}
	return records, total, nil
}

// CountByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CountByDate(ctx context.Context, date string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"date": date})
	if err != nil {
		return 0, fmt.Errorf("failed to count attendances on %s: %w", date, err)
	}
	return count, nil
}

// CountByDateAndStatus implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CountByDateAndStatus(ctx context.Context, date string, status attendance.Status) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"date": date, "status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s attendances on %s: %w", status, date, err)
	}
	return count, nil
}
