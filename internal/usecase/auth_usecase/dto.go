package auth

import (
	"time"

	"app/internal/domain/model"
)

// API返却用。password_hashとrefresh token一覧は絶対に含めない
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// register/loginの結果
// RefreshTokenPlainはhandlerがCookieに詰めるためだけに返す（bodyには出さない）
type AuthResult struct {
	User              UserDTO
	AccessToken       string
	RefreshTokenPlain string
}

// refreshの結果（回転後の新ペア）
type RefreshResult struct {
	AccessToken       string
	RefreshTokenPlain string
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}
