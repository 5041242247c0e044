package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

const userColumns = `id, username, email, password, nickname, avatar, signature, location, website,
	company, role, balance, reputation, self_intro, twitter, github, douban, created, updated`

type userRow struct {
	ID         int64     `db:"id"`
	Username   string    `db:"username"`
	Email      string    `db:"email"`
	Password   string    `db:"password"`
	Nickname   string    `db:"nickname"`
	Avatar     string    `db:"avatar"`
	Signature  string    `db:"signature"`
	Location   string    `db:"location"`
	Website    string    `db:"website"`
	Company    string    `db:"company"`
	Role       int       `db:"role"`
	Balance    int       `db:"balance"`
	Reputation int       `db:"reputation"`
	SelfIntro  string    `db:"self_intro"`
	Twitter    string    `db:"twitter"`
	Github     string    `db:"github"`
	Douban     string    `db:"douban"`
	Created    time.Time `db:"created"`
	Updated    time.Time `db:"updated"`
}

func (r userRow) model() model.User {
	return model.User{
		ID: r.ID, Username: r.Username, Email: r.Email, PasswordHash: r.Password,
		Nickname: r.Nickname, Avatar: r.Avatar, Signature: r.Signature, Location: r.Location,
		Website: r.Website, Company: r.Company, Role: r.Role, Balance: r.Balance,
		Reputation: r.Reputation, SelfIntro: r.SelfIntro, Twitter: r.Twitter, Github: r.Github,
		Douban: r.Douban, Created: r.Created.UTC(), Updated: r.Updated.UTC(),
	}
}

type userRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := ensureDB(r.db); err != nil {
		return model.User{}, err
	}
	u.Created = stamp(u.Created)
	if u.Updated.IsZero() {
		u.Updated = u.Created
	}
	exec := getQ(ctx, r.db)
	var id int64
	err := sqlx.GetContext(ctx, exec, &id, exec.Rebind(
		`INSERT INTO users (username, email, password, nickname, avatar, signature, location, website,
			company, role, balance, reputation, self_intro, twitter, github, douban, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		u.Username, u.Email, u.PasswordHash, u.Nickname, u.Avatar, u.Signature, u.Location, u.Website,
		u.Company, u.Role, u.Balance, u.Reputation, u.SelfIntro, u.Twitter, u.Github, u.Douban,
		u.Created, stamp(u.Updated),
	)
	if err != nil {
		return model.User{}, repository.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (model.User, error) {
	if err := ensureDB(r.db); err != nil {
		return model.User{}, err
	}
	exec := getQ(ctx, r.db)
	var row userRow
	if err := sqlx.GetContext(ctx, exec, &row, exec.Rebind(query), args...); err != nil {
		return model.User{}, repository.MapError(err)
	}
	return row.model(), nil
}

func (r *userRepository) AdjustBalance(ctx context.Context, id int64, delta int) (int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.db)
	var balance int
	err := sqlx.GetContext(ctx, exec, &balance, exec.Rebind(
		`UPDATE users SET balance = balance + ?, updated = ? WHERE id = ? RETURNING balance`),
		delta, now(), id,
	)
	if err != nil {
		return 0, repository.MapError(err)
	}
	return balance, nil
}

var _ repository.UserRepository = (*userRepository)(nil)
