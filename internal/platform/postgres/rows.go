package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullString stores empty strings as NULL so optional unique columns
// (email, phone) do not collide on "".
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
// Each condition is a format string whose %[1]d is replaced by the
// placeholder index of its argument.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(cond string, arg any) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(cond, len(b.args)))
}

func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// likePattern builds a case-insensitive substring pattern with LIKE
// wildcards in the keyword escaped.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

// nullUserSummary scans the user columns of a LEFT JOIN.
type nullUserSummary struct {
	id        uuid.NullUUID
	fullName  sql.NullString
	email     sql.NullString
	phone     sql.NullString
	avatarURL sql.NullString
}

const userSummaryColumns = "%[1]s.id, %[1]s.full_name, %[1]s.email, %[1]s.phone, %[1]s.avatar_url"

func userSummarySelect(alias string) string {
	return fmt.Sprintf(userSummaryColumns, alias)
}

func (n *nullUserSummary) dest() []any {
	return []any{&n.id, &n.fullName, &n.email, &n.phone, &n.avatarURL}
}

func (n *nullUserSummary) summary() *domain.UserSummary {
	if !n.id.Valid {
		return nil
	}
	return &domain.UserSummary{
		ID:        n.id.UUID,
		FullName:  n.fullName.String,
		Email:     n.email.String,
		Phone:     n.phone.String,
		AvatarURL: n.avatarURL.String,
	}
}

// taskSelect reads a task (alias t) with its requester (alias u).
const taskSelect = `t.id, t.title, t.description, t.category, t.images, t.province, t.ward,
	t.price, t.posting_fee, t.deadline, t.payment_proof_url, t.status, t.requester_id,
	t.created_at, t.updated_at, ` + "u.id, u.full_name, u.email, u.phone, u.avatar_url"

// nullTask scans the columns of taskSelect, tolerating a missing task row.
type nullTask struct {
	id           uuid.NullUUID
	title        sql.NullString
	description  sql.NullString
	category     sql.NullString
	images       []byte
	province     sql.NullString
	ward         sql.NullString
	price        sql.NullFloat64
	postingFee   sql.NullFloat64
	deadline     sql.NullTime
	paymentProof sql.NullString
	status       sql.NullString
	requesterID  uuid.NullUUID
	createdAt    sql.NullTime
	updatedAt    sql.NullTime
	requester    nullUserSummary
}

func (n *nullTask) dest() []any {
	d := []any{
		&n.id, &n.title, &n.description, &n.category, &n.images, &n.province, &n.ward,
		&n.price, &n.postingFee, &n.deadline, &n.paymentProof, &n.status, &n.requesterID,
		&n.createdAt, &n.updatedAt,
	}
	return append(d, n.requester.dest()...)
}

func (n *nullTask) task() (*domain.Task, error) {
	if !n.id.Valid {
		return nil, nil
	}
	images := []string{}
	if len(n.images) > 0 {
		if err := json.Unmarshal(n.images, &images); err != nil {
			return nil, fmt.Errorf("failed to decode task images: %w", err)
		}
	}
	return &domain.Task{
		ID:              n.id.UUID,
		Title:           n.title.String,
		Description:     n.description.String,
		Category:        n.category.String,
		Images:          images,
		Location:        domain.TaskLocation{Province: n.province.String, Ward: n.ward.String},
		Price:           n.price.Float64,
		PostingFee:      n.postingFee.Float64,
		Deadline:        n.deadline.Time,
		PaymentProofURL: n.paymentProof.String,
		Status:          domain.TaskStatus(n.status.String),
		RequesterID:     n.requesterID.UUID,
		Requester:       n.requester.summary(),
		CreatedAt:       n.createdAt.Time,
		UpdatedAt:       n.updatedAt.Time,
	}, nil
}
