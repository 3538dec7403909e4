package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"kurukshetra_backend/internal/feature/auth/domain"
	"kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/platform/config"
)

// userDocument is the MongoDB representation of entity.User.
type userDocument struct {
	ID           string     `bson:"_id"`
	Username     string     `bson:"username"`
	Email        string     `bson:"email"`
	Password     string     `bson:"password"`
	PasswordHash string     `bson:"passwordHash,omitempty"`
	Role         string     `bson:"role"`
	FirstName    string     `bson:"firstName,omitempty"`
	LastName     string     `bson:"lastName,omitempty"`
	FlagsFound   []string   `bson:"flagsFound"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty"`
	LastLogoutAt *time.Time `bson:"lastLogoutAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
}

func toUserDocument(u *entity.User) *userDocument {
	flags := u.FlagsFound
	if flags == nil {
		flags = []string{}
	}
	return &userDocument{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Password:     u.Password,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FlagsFound:   flags,
		LastLoginAt:  u.LastLoginAt,
		LastLogoutAt: u.LastLogoutAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d *userDocument) toEntity() *entity.User {
	flags := d.FlagsFound
	if flags == nil {
		flags = []string{}
	}
	return &entity.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		Password:     d.Password,
		PasswordHash: d.PasswordHash,
		Role:         entity.Role(d.Role),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		FlagsFound:   flags,
		LastLoginAt:  d.LastLoginAt,
		LastLogoutAt: d.LastLogoutAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// userMongo はUserBackendのMongoDB実装です。
type userMongo struct {
	coll *mongo.Collection
}

var _ UserBackend = (*userMongo)(nil)

// NewUserMongo creates the document backend over the users collection.
func NewUserMongo(coll *mongo.Collection) *userMongo {
	return &userMongo{coll: coll}
}

func (r *userMongo) Name() string { return config.BackendMongo }

// EnsureIndexes creates the unique indexes on username and email.
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create mongo user indexes: %w", err)
	}
	return nil
}

func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if _, err := r.coll.InsertOne(ctx, toUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("mongo insert user: %w", err)
	}
	return nil
}

func (r *userMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": entity.NormalizeEmail(email)})
}

func (r *userMongo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userMongo) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("mongo update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userMongo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLoginAt": at, "updatedAt": at})
}

func (r *userMongo) Logout(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"lastLogoutAt": at, "updatedAt": at})
}

// AddFlag は slug を含まないドキュメントだけを対象にした条件付き $addToSet で追加します。
// 一致しなかった場合はユーザーの有無で not found と重複を区別します。
func (r *userMongo) AddFlag(ctx context.Context, id, slug string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "flagsFound": bson.M{"$ne": slug}},
		bson.M{
			"$addToSet": bson.M{"flagsFound": slug},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("mongo add flag: %w", err)
	}
	if res.ModifiedCount == 1 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo count user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return domain.ErrFlagAlreadyFound
}

func (r *userMongo) UpdateProfile(ctx context.Context, id string, upd entity.ProfileUpdate, at time.Time) error {
	fields := bson.M{"updatedAt": at}
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.Email != nil {
		fields["email"] = entity.NormalizeEmail(*upd.Email)
	}
	if upd.FirstName != nil {
		fields["firstName"] = *upd.FirstName
	}
	if upd.LastName != nil {
		fields["lastName"] = *upd.LastName
	}
	return r.set(ctx, id, fields)
}

func (r *userMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
