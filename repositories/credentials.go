package repositories

import (
	"context"
	"strings"

	"fire-base/kvstore"
)

// CredentialRepository 는 사용자가 입력한 Gemini 키를 아이디어 스냅샷과 별도의 키에 보관한다.
type CredentialRepository struct {
	kv  kvstore.Store
	key string
}

func NewCredentialRepository(kv kvstore.Store, key string) *CredentialRepository {
	return &CredentialRepository{kv: kv, key: key}
}

// Get 은 저장된 키를 반환한다. 공백만 있는 값은 없는 것으로 본다.
func (r *CredentialRepository) Get(ctx context.Context) (string, error) {
	v, ok, err := r.kv.Get(ctx, r.key)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func (r *CredentialRepository) Set(ctx context.Context, credential string) error {
	return r.kv.Set(ctx, r.key, strings.TrimSpace(credential))
}

func (r *CredentialRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, r.key)
}
