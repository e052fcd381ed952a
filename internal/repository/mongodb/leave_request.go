package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type leaveRequestDocument struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	EmployeeID   primitive.ObjectID  `bson:"employee_id"`
	EmpID        string              `bson:"emp_id"`
	EmployeeName string              `bson:"employee_name"`
	Type         string              `bson:"type"`
	StartDate    string              `bson:"start_date"`
	EndDate      string              `bson:"end_date"`
	Days         int                 `bson:"days"`
	Reason       string              `bson:"reason"`
	Status       string              `bson:"status"`
	DecidedBy    *primitive.ObjectID `bson:"decided_by,omitempty"`
	DecidedAt    *time.Time          `bson:"decided_at,omitempty"`
	DecisionNote *string             `bson:"decision_note,omitempty"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

func (d leaveRequestDocument) toEntity() leave.LeaveRequest {
	r := leave.LeaveRequest{
		ID:           hexOrEmpty(d.ID),
		EmployeeID:   hexOrEmpty(d.EmployeeID),
		EmpID:        d.EmpID,
		EmployeeName: d.EmployeeName,
		Type:         leave.LeaveType(d.Type),
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Days:         d.Days,
		Reason:       d.Reason,
		Status:       leave.LeaveRequestStatus(d.Status),
		DecidedAt:    d.DecidedAt,
		DecisionNote: d.DecisionNote,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.DecidedBy != nil {
		decidedBy := d.DecidedBy.Hex()
		r.DecidedBy = &decidedBy
	}
	return r
}

type leaveRequestRepositoryImpl struct {
	collection *mongo.Collection
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{collection: db.Collection(database.CollectionLeaveRequests)}
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	employeeOID, err := parseID(req.EmployeeID, leave.ErrLeaveRequestNotFound)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	now := time.Now().UTC()
	doc := leaveRequestDocument{
		ID:           primitive.NewObjectID(),
		EmployeeID:   employeeOID,
		EmpID:        req.EmpID,
		EmployeeName: req.EmployeeName,
		Type:         string(req.Type),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Days:         req.Days,
		Reason:       req.Reason,
		Status:       string(leave.LeaveRequestStatusPending),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to insert leave request: %w", err)
	}
	return doc.toEntity(), nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	oid, err := parseID(id, leave.ErrLeaveRequestNotFound)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	var doc leaveRequestDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to find leave request %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
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
	if filter.Type != nil {
		query["type"] = *filter.Type
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, paginate(filter.Page, filter.Limit, bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	var docs []leaveRequestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode leave requests: %w", err)
	}

	requests := make([]leave.LeaveRequest, 0, len(docs))
	for _, d := range docs {
		requests = append(requests, d.toEntity())
	}
	return requests, total, nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, startDate string, endDate string) (bool, error) {
	oid, err := parseID(employeeID, leave.ErrLeaveRequestNotFound)
	if err != nil {
		return false, err
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"employee_id": oid,
		"status": bson.M{"$in": bson.A{
			string(leave.LeaveRequestStatusPending),
			string(leave.LeaveRequestStatusApproved),
		}},
		"start_date": bson.M{"$lte": endDate},
		"end_date":   bson.M{"$gte": startDate},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return count > 0, nil
}

// UpdateDecision implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateDecision(ctx context.Context, req leave.LeaveRequest) error {
	oid, err := parseID(req.ID, leave.ErrLeaveRequestNotFound)
	if err != nil {
		return err
	}

	set := bson.M{
		"status":     string(req.Status),
		"decided_at": req.DecidedAt,
		"updated_at": time.Now().UTC(),
	}
	if req.DecidedBy != nil {
		if actor, err := primitive.ObjectIDFromHex(*req.DecidedBy); err == nil {
			set["decided_by"] = actor
		}
	}
	if req.DecisionNote != nil {
		set["decision_note"] = *req.DecisionNote
	}

	// Only a request still pending in the store is updated, so of two concurrent deciders one loses
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(leave.LeaveRequestStatusPending)},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request %s: %w", req.ID, err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, req.ID); err != nil {
			return err
		}
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	return nil
}

// CountByStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) CountByStatus(ctx context.Context, status leave.LeaveRequestStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s leave requests: %w", status, err)
	}
	return count, nil
}
