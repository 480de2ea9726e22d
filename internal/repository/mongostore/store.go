// Package mongostore implements the repositories on MongoDB, keeping comments
// and the timeline embedded in the grievance document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

const (
	grievancesCollection  = "grievances"
	departmentsCollection = "departments"
	usersCollection       = "users"
	countersCollection    = "counters"
)

// NewStore wires the MongoDB repositories on db.
func NewStore(db *mongo.Database) repository.Store {
	return repository.Store{
		Grievances:  &grievanceRepository{col: db.Collection(grievancesCollection), counters: db.Collection(countersCollection)},
		Departments: &departmentRepository{col: db.Collection(departmentsCollection)},
		Users:       &userRepository{col: db.Collection(usersCollection)},
	}
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	grievanceIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ticketId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_ticket_id")},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "department", Value: 1}}},
		{Keys: bson.D{{Key: "complainant.phone", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(grievancesCollection).Indexes().CreateMany(ctx, grievanceIndexes); err != nil {
		return fmt.Errorf("grievance indexes: %w", err)
	}
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	_, err = db.Collection(departmentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("department indexes: %w", err)
	}
	return nil
}

func mapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

// containsPattern builds a case-insensitive substring regex with s taken literally.
func containsPattern(s string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

type grievanceRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func (r *grievanceRepository) Create(ctx context.Context, g *domain.Grievance) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UpdatedAt = g.CreatedAt
	if g.TicketID == "" {
		seq, err := r.nextTicketSequence(ctx, g.CreatedAt.Year())
		if err != nil {
			return err
		}
		g.TicketID = domain.FormatTicketID(g.CreatedAt.Year(), seq)
	}
	for i := range g.Timeline {
		g.Timeline[i].Seq = i + 1
	}
	for i := range g.Comments {
		g.Comments[i].Seq = i + 1
	}

	_, err := r.col.InsertOne(ctx, toGrievanceDoc(g))
	return mapMongoError(err)
}

func (r *grievanceRepository) nextTicketSequence(ctx context.Context, year int) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": fmt.Sprintf("grievance-%d", year)},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate ticket sequence: %w", err)
	}
	return counter.Value, nil
}

func (r *grievanceRepository) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	var doc grievanceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *grievanceRepository) List(ctx context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, int64, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.DepartmentID != nil {
		query["department"] = *filter.DepartmentID
	}
	if filter.Priority != nil {
		query["priority"] = string(*filter.Priority)
	}
	if filter.FiledBy != nil {
		query["filedBy"] = *filter.FiledBy
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		pattern := containsPattern(strings.TrimSpace(*filter.Search))
		query["$or"] = bson.A{
			bson.M{"ticketId": pattern},
			bson.M{"complainant.phone": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "ticketId", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []grievanceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	items := make([]domain.Grievance, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toDomain())
	}
	return items, total, nil
}

func (r *grievanceRepository) UpdateStatus(ctx context.Context, id string, from domain.GrievanceStatus, entry domain.TimelineEntry) (*domain.Grievance, error) {
	stage := bson.D{
		{Key: "status", Value: literal(string(entry.Status))},
		{Key: "updatedAt", Value: entry.UpdatedAt},
		{Key: "timeline", Value: appendWithSeq("timeline", timelineFields(literal(string(entry.Status)), entry))},
	}
	g, err := r.applyWhere(ctx, bson.M{"_id": id, "status": string(from)}, stage)
	if !errors.Is(err, repository.ErrNotFound) {
		return g, err
	}
	exists, countErr := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if exists > 0 {
		return nil, repository.ErrStaleStatus
	}
	return nil, repository.ErrNotFound
}

func (r *grievanceRepository) Assign(ctx context.Context, id, assigneeID string, entry domain.TimelineEntry) (*domain.Grievance, error) {
	// "$status" resolves to the stored status before this stage runs.
	stage := bson.D{
		{Key: "assignedTo", Value: literal(assigneeID)},
		{Key: "updatedAt", Value: entry.UpdatedAt},
		{Key: "timeline", Value: appendWithSeq("timeline", timelineFields("$status", entry))},
	}
	return r.apply(ctx, id, stage)
}

func (r *grievanceRepository) AddComment(ctx context.Context, id string, comment domain.Comment) (*domain.Grievance, error) {
	stage := bson.D{
		{Key: "updatedAt", Value: comment.PostedAt},
		{Key: "comments", Value: appendWithSeq("comments", bson.D{
			{Key: "text", Value: literal(comment.Text)},
			{Key: "postedBy", Value: literal(comment.PostedBy)},
			{Key: "postedAt", Value: comment.PostedAt},
		})},
	}
	return r.apply(ctx, id, stage)
}

// apply runs a single-document pipeline update and returns the new document.
func (r *grievanceRepository) apply(ctx context.Context, id string, set bson.D) (*domain.Grievance, error) {
	return r.applyWhere(ctx, bson.M{"_id": id}, set)
}

func (r *grievanceRepository) applyWhere(ctx context.Context, filter bson.M, set bson.D) (*domain.Grievance, error) {
	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc grievanceDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *grievanceRepository) CountByDepartment(ctx context.Context, departmentID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"department": departmentID})
}

func (r *grievanceRepository) StatusCounts(ctx context.Context, departmentID string) (map[domain.GrievanceStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"department": departmentID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	counts := make(map[domain.GrievanceStatus]int64, len(groups))
	for _, group := range groups {
		counts[domain.GrievanceStatus(group.Status)] = group.Count
	}
	return counts, nil
}

func timelineFields(status any, entry domain.TimelineEntry) bson.D {
	return bson.D{
		{Key: "status", Value: status},
		{Key: "updatedBy", Value: literal(entry.UpdatedBy)},
		{Key: "updatedAt", Value: entry.UpdatedAt},
		{Key: "comment", Value: literal(entry.Comment)},
	}
}

// appendWithSeq is an aggregation expression appending item to the array field,
// numbering it one past the current length.
func appendWithSeq(field string, item bson.D) bson.D {
	current := bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}
	seq := bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$size", Value: current}}, 1}}}
	withSeq := append(bson.D{{Key: "seq", Value: seq}}, item...)
	return bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{withSeq}}}}
}

// literal stops user text beginning with "$" from being read as a field path.
func literal(v string) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

type departmentRepository struct {
	col *mongo.Collection
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	dept.CreatedAt = now
	dept.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, toDepartmentDoc(dept))
	return mapMongoError(err)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	dept.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":         dept.Name,
		"description":  dept.Description,
		"contactEmail": dept.ContactEmail,
		"contactPhone": dept.ContactPhone,
		"updatedAt":    dept.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if dept.HeadOfDepartment != nil {
		set["headOfDepartment"] = *dept.HeadOfDepartment
	} else {
		update["$unset"] = bson.M{"headOfDepartment": ""}
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": dept.ID}, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	var doc departmentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	dept := doc.toDomain()
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, search string) ([]domain.Department, error) {
	query := bson.M{}
	if search != "" {
		query["name"] = containsPattern(search)
	}
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []departmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.Department, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type userRepository struct {
	col *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, toUserDoc(user))
	return mapMongoError(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":         user.Name,
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"role":         string(user.Role),
		"updatedAt":    user.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if user.DepartmentID != nil {
		set["department"] = *user.DepartmentID
	} else {
		update["$unset"] = bson.M{"department": ""}
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapMongoError(err)
	}
	user := doc.toDomain()
	return &user, nil
}
