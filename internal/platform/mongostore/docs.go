package mongostore

import (
	"time"

	"github.com/phrazzld/taskie-api/internal/domain"
)

type userDoc struct {
	ID                   string    `bson:"_id"`
	FullName             string    `bson:"fullName"`
	DateOfBirth          time.Time `bson:"dateOfBirth"`
	Email                string    `bson:"email,omitempty"`
	Phone                string    `bson:"phone,omitempty"`
	Password             string    `bson:"password"`
	AvatarURL            string    `bson:"avatarUrl,omitempty"`
	ProofOfExperienceURL string    `bson:"proofOfExperienceUrl,omitempty"`
	CurrentRole          string    `bson:"currentRole,omitempty"`
	CreatedAt            time.Time `bson:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt"`
}

func newUserDoc(u *domain.User) *userDoc {
	return &userDoc{
		ID:                   u.ID.String(),
		FullName:             u.FullName,
		DateOfBirth:          u.DateOfBirth,
		Email:                u.Email,
		Phone:                u.Phone,
		Password:             u.HashedPassword,
		AvatarURL:            u.AvatarURL,
		ProofOfExperienceURL: u.ProofOfExperienceURL,
		CurrentRole:          string(u.CurrentRole),
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                   parseID(d.ID),
		FullName:             d.FullName,
		DateOfBirth:          d.DateOfBirth,
		Email:                d.Email,
		Phone:                d.Phone,
		HashedPassword:       d.Password,
		AvatarURL:            d.AvatarURL,
		ProofOfExperienceURL: d.ProofOfExperienceURL,
		CurrentRole:          domain.Role(d.CurrentRole),
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

type locationRef struct {
	Province string `bson:"province"`
	Ward     string `bson:"ward"`
}

type taskDoc struct {
	ID              string      `bson:"_id"`
	Title           string      `bson:"title"`
	Description     string      `bson:"description"`
	Category        string      `bson:"category"`
	Images          []string    `bson:"images"`
	Location        locationRef `bson:"location"`
	Price           float64     `bson:"price"`
	PostingFee      float64     `bson:"postingFee"`
	Deadline        time.Time   `bson:"deadline"`
	PaymentProofURL string      `bson:"paymentProof,omitempty"`
	Status          string      `bson:"status"`
	Requester       string      `bson:"requester"`
	CreatedAt       time.Time   `bson:"createdAt"`
	UpdatedAt       time.Time   `bson:"updatedAt"`
}

func newTaskDoc(t *domain.Task) *taskDoc {
	images := t.Images
	if images == nil {
		images = []string{}
	}
	return &taskDoc{
		ID:              t.ID.String(),
		Title:           t.Title,
		Description:     t.Description,
		Category:        t.Category,
		Images:          images,
		Location:        locationRef{Province: t.Location.Province, Ward: t.Location.Ward},
		Price:           t.Price,
		PostingFee:      t.PostingFee,
		Deadline:        t.Deadline,
		PaymentProofURL: t.PaymentProofURL,
		Status:          string(t.Status),
		Requester:       t.RequesterID.String(),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (d *taskDoc) toDomain() *domain.Task {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Task{
		ID:              parseID(d.ID),
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		Images:          images,
		Location:        domain.TaskLocation{Province: d.Location.Province, Ward: d.Location.Ward},
		Price:           d.Price,
		PostingFee:      d.PostingFee,
		Deadline:        d.Deadline,
		PaymentProofURL: d.PaymentProofURL,
		Status:          domain.TaskStatus(d.Status),
		RequesterID:     parseID(d.Requester),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type messageDoc struct {
	ID        string    `bson:"_id"`
	Task      string    `bson:"task"`
	Sender    string    `bson:"sender"`
	Receiver  string    `bson:"receiver"`
	Content   string    `bson:"content"`
	IsRead    bool      `bson:"isRead"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func newMessageDoc(m *domain.Message) *messageDoc {
	return &messageDoc{
		ID:        m.ID.String(),
		Task:      m.TaskID.String(),
		Sender:    m.SenderID.String(),
		Receiver:  m.ReceiverID.String(),
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:         parseID(d.ID),
		TaskID:     parseID(d.Task),
		SenderID:   parseID(d.Sender),
		ReceiverID: parseID(d.Receiver),
		Content:    d.Content,
		IsRead:     d.IsRead,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type favoriteDoc struct {
	ID        string    `bson:"_id"`
	Tasker    string    `bson:"tasker"`
	Task      string    `bson:"task"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func newFavoriteDoc(f *domain.Favorite) *favoriteDoc {
	return &favoriteDoc{
		ID:        f.ID.String(),
		Tasker:    f.TaskerID.String(),
		Task:      f.TaskID.String(),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func (d *favoriteDoc) toDomain() *domain.Favorite {
	return &domain.Favorite{
		ID:        parseID(d.ID),
		TaskerID:  parseID(d.Tasker),
		TaskID:    parseID(d.Task),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type categoryDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	PostingFee  float64   `bson:"postingFee"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d *categoryDoc) toDomain() *domain.JobCategory {
	return &domain.JobCategory{
		ID:          parseID(d.ID),
		Name:        d.Name,
		PostingFee:  d.PostingFee,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type locationDoc struct {
	ID        string    `bson:"_id"`
	Province  string    `bson:"province"`
	Wards     []string  `bson:"wards"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *locationDoc) toDomain() *domain.Location {
	wards := d.Wards
	if wards == nil {
		wards = []string{}
	}
	return &domain.Location{
		ID:        parseID(d.ID),
		Province:  d.Province,
		Wards:     wards,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
