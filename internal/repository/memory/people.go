package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if err := r.s.lock(ctx, "profiles.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.nextID()
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.data.users[u.ID] = *u
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if err := r.s.lock(ctx, "profiles.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := r.s.lock(ctx, "profiles.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	if err := r.s.lock(ctx, "profiles.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.data.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// Transactions already run one at a time here.
func (r *userRepo) LockForRoleChange(ctx context.Context) error {
	if err := r.s.lock(ctx, "profiles.lock"); err != nil {
		return err
	}
	r.s.mu.Unlock()
	return nil
}

// must be called with mu held
func (s *Store) userPtr(id uint) *models.User {
	if u, ok := s.data.users[id]; ok {
		return &u
	}
	return nil
}

type projectRepo struct{ s *Store }

func (r *projectRepo) match(f repository.ProjectFilter) []models.Project {
	var out []models.Project
	for _, p := range r.s.data.projects {
		if len(f.Statuses) > 0 && !contains(f.Statuses, p.Status) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *projectRepo) List(ctx context.Context, f repository.ProjectFilter) ([]models.Project, error) {
	if err := r.s.lock(ctx, "projects.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := r.match(f)
	newestFirst(out, func(p models.Project) time.Time { return p.CreatedAt }, func(p models.Project) uint { return p.ID })
	out = limit(out, f.Limit)
	for i := range out {
		out[i].Creator = r.s.userPtr(out[i].CreatedBy)
	}
	return out, nil
}

func (r *projectRepo) Count(ctx context.Context, f repository.ProjectFilter) (int64, error) {
	if err := r.s.lock(ctx, "projects.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return int64(len(r.match(f))), nil
}

func (r *projectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	if err := r.s.lock(ctx, "projects.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	p, ok := r.s.data.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Creator = r.s.userPtr(p.CreatedBy)
	return &p, nil
}

func (r *projectRepo) Create(ctx context.Context, p *models.Project) error {
	if err := r.s.lock(ctx, "projects.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	row := *p
	row.Creator = nil
	r.s.data.projects[p.ID] = row
	return nil
}

func (r *projectRepo) UpdateStatus(ctx context.Context, id uint, st models.ProjectStatus) error {
	if err := r.s.lock(ctx, "projects.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	p, ok := r.s.data.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = st
	p.UpdatedAt = r.s.tick()
	r.s.data.projects[id] = p
	return nil
}

type supplierRepo struct{ s *Store }

func (r *supplierRepo) match(f repository.SupplierFilter) []models.Supplier {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []models.Supplier
	for _, sup := range r.s.data.suppliers {
		if len(f.Statuses) > 0 && !contains(f.Statuses, sup.Status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sup.Name), search) {
			continue
		}
		out = append(out, sup)
	}
	return out
}

func (r *supplierRepo) List(ctx context.Context, f repository.SupplierFilter) ([]models.Supplier, error) {
	if err := r.s.lock(ctx, "suppliers.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := r.match(f)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *supplierRepo) Count(ctx context.Context, f repository.SupplierFilter) (int64, error) {
	if err := r.s.lock(ctx, "suppliers.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return int64(len(r.match(f))), nil
}

func (r *supplierRepo) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	if err := r.s.lock(ctx, "suppliers.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	sup, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sup, nil
}

func (r *supplierRepo) Create(ctx context.Context, sup *models.Supplier) error {
	if err := r.s.lock(ctx, "suppliers.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	sup.ID = r.s.nextID()
	sup.CreatedAt = r.s.tick()
	sup.UpdatedAt = sup.CreatedAt
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}

func (r *supplierRepo) Update(ctx context.Context, sup *models.Supplier) error {
	if err := r.s.lock(ctx, "suppliers.update"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.suppliers[sup.ID]; !ok {
		return repository.ErrNotFound
	}
	sup.UpdatedAt = r.s.tick()
	r.s.data.suppliers[sup.ID] = *sup
	return nil
}
