package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type employeeDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	EmpID        string             `bson:"emp_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone,omitempty"`
	Department   string             `bson:"department,omitempty"`
	Designation  string             `bson:"designation,omitempty"`
	Role         string             `bson:"role"`
	PasswordHash string             `bson:"password_hash"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d employeeDocument) toEntity() employee.Employee {
	return employee.Employee{
		ID:           hexOrEmpty(d.ID),
		EmpID:        d.EmpID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Department:   d.Department,
		Designation:  d.Designation,
		Role:         employee.Role(d.Role),
		PasswordHash: d.PasswordHash,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type employeeRepositoryImpl struct {
	collection *mongo.Collection
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{collection: db.Collection(database.CollectionEmployees)}
}

// duplicateEmployeeError maps a unique index violation to the matching domain error.
func duplicateEmployeeError(err error) error {
	if strings.Contains(err.Error(), "uniq_email") {
		return employee.ErrEmailExists
	}
	return employee.ErrEmpIDExists
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	now := time.Now().UTC()
	if newEmployee.CreatedAt.IsZero() {
		newEmployee.CreatedAt = now
	}
	newEmployee.UpdatedAt = now

	doc := employeeDocument{
		ID:           primitive.NewObjectID(),
		EmpID:        newEmployee.EmpID,
		Name:         newEmployee.Name,
		Email:        newEmployee.Email,
		Phone:        newEmployee.Phone,
		Department:   newEmployee.Department,
		Designation:  newEmployee.Designation,
		Role:         string(newEmployee.Role),
		PasswordHash: newEmployee.PasswordHash,
		IsActive:     newEmployee.IsActive,
		CreatedAt:    newEmployee.CreatedAt,
		UpdatedAt:    newEmployee.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return employee.Employee{}, duplicateEmployeeError(err)
		}
		return employee.Employee{}, fmt.Errorf("failed to insert employee %s: %w", newEmployee.EmpID, err)
	}

	return doc.toEntity(), nil
}

func (r *employeeRepositoryImpl) findOne(ctx context.Context, filter bson.M) (employee.Employee, error) {
	var doc employeeDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to find employee: %w", err)
	}
	return doc.toEntity(), nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	oid, err := parseID(id, employee.ErrEmployeeNotFound)
	if err != nil {
		return employee.Employee{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByEmpID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmpID(ctx context.Context, empID string) (employee.Employee, error) {
	return r.findOne(ctx, bson.M{"emp_id": empID})
}

// GetByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	query := bson.M{}
	if filter.Search != nil && *filter.Search != "" {
		pattern := containsFold(*filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"emp_id": pattern},
			bson.M{"email": pattern},
		}
	}
	if filter.Role != nil {
		query["role"] = *filter.Role
	}
	if filter.IsActive != nil {
		query["is_active"] = *filter.IsActive
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, paginate(filter.Page, filter.Limit, bson.D{{Key: "emp_id", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode employees: %w", err)
	}

	employees := make([]employee.Employee, 0, len(docs))
	for _, d := range docs {
		employees = append(employees, d.toEntity())
	}
	return employees, total, nil
}

// Update implements employee.EmployeeRepository. Password and emp_id are not touched.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) error {
	oid, err := parseID(e.ID, employee.ErrEmployeeNotFound)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        e.Name,
		"email":       e.Email,
		"phone":       e.Phone,
		"department":  e.Department,
		"designation": e.Designation,
		"role":        string(e.Role),
		"is_active":   e.IsActive,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateEmployeeError(err)
		}
		return fmt.Errorf("failed to update employee %s: %w", e.ID, err)
	}
	if result.MatchedCount == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdatePassword implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	oid, err := parseID(id, employee.ErrEmployeeNotFound)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update password for employee %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// CountByRole implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) CountByRole(ctx context.Context, role employee.Role) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("failed to count employees with role %s: %w", role, err)
	}
	return count, nil
}

// CountActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) CountActive(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return count, nil
}
