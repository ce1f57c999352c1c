// Package testutil provides in-memory stand-ins for the postgres repositories
// and the object store. They honour the same constraints as the schema:
// unique category names, foreign keys, cascades and image ordering.
package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"mk3hierros/internal/models"
	"mk3hierros/internal/repository"
	"mk3hierros/internal/storage"
)

// MemoryDB holds the shared state behind the three store views.
type MemoryDB struct {
	mu         sync.Mutex
	categories map[int64]models.Category
	works      map[int64]models.Work
	images     map[int64]models.WorkImage
	lastID     int64

	// ImageInsertErr, when set, fails the next CreateBatch call.
	ImageInsertErr error
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		categories: make(map[int64]models.Category),
		works:      make(map[int64]models.Work),
		images:     make(map[int64]models.WorkImage),
	}
}

func (db *MemoryDB) nextID() int64 {
	db.lastID++
	return db.lastID
}

func (db *MemoryDB) Categories() *MemoryCategories { return &MemoryCategories{db: db} }
func (db *MemoryDB) Works() *MemoryWorks           { return &MemoryWorks{db: db} }
func (db *MemoryDB) Images() *MemoryImages         { return &MemoryImages{db: db} }

// ImageCount returns the number of stored image rows.
func (db *MemoryDB) ImageCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.images)
}

type MemoryCategories struct{ db *MemoryDB }

func (s *MemoryCategories) List(context.Context) ([]models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]models.Category, 0, len(s.db.categories))
	for _, c := range s.db.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Category) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *MemoryCategories) GetByID(_ context.Context, id int64) (models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.categories[id]
	if !ok {
		return models.Category{}, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (s *MemoryCategories) FindByName(ctx context.Context, name string) ([]models.Category, error) {
	all, _ := s.List(ctx)
	out := []models.Category{}
	for _, c := range all {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryCategories) Create(_ context.Context, name string) (models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, c := range s.db.categories {
		if c.Name == name {
			return models.Category{}, repository.ErrCategoryExists
		}
	}
	c := models.Category{ID: s.db.nextID(), Name: name}
	s.db.categories[c.ID] = c
	return c, nil
}

func (s *MemoryCategories) Update(_ context.Context, category models.Category) (models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.categories[category.ID]; !ok {
		return models.Category{}, repository.ErrCategoryNotFound
	}
	for _, c := range s.db.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return models.Category{}, repository.ErrCategoryExists
		}
	}
	s.db.categories[category.ID] = category
	return category, nil
}

func (s *MemoryCategories) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(s.db.categories, id)
	for wid, w := range s.db.works {
		if w.CategoryID() == id {
			w.Category = nil
			s.db.works[wid] = w
		}
	}
	return nil
}

func (s *MemoryCategories) Count(context.Context) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.categories), nil
}

type MemoryWorks struct{ db *MemoryDB }

func (s *MemoryWorks) List(_ context.Context, filter repository.WorkFilter) ([]models.Work, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []models.Work{}
	for _, w := range s.db.works {
		if filter.CategoryID != nil && w.CategoryID() != *filter.CategoryID {
			continue
		}
		if filter.Priority != nil && w.Priority != *filter.Priority {
			continue
		}
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		out = append(out, s.resolve(w))
	}
	slices.SortFunc(out, func(a, b models.Work) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *MemoryWorks) GetByID(_ context.Context, id int64) (models.Work, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	w, ok := s.db.works[id]
	if !ok {
		return models.Work{}, repository.ErrWorkNotFound
	}
	return s.resolve(w), nil
}

func (s *MemoryWorks) Create(_ context.Context, work models.Work) (models.Work, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if id := work.CategoryID(); id != 0 {
		if _, ok := s.db.categories[id]; !ok {
			return models.Work{}, repository.ErrCategoryNotFound
		}
		work.Category = &models.Category{ID: id}
	}
	work.ID = s.db.nextID()
	work.CreateAt = time.Now().UTC()
	work.Images = nil
	s.db.works[work.ID] = work
	return s.resolve(work), nil
}

func (s *MemoryWorks) Update(_ context.Context, id int64, patch models.WorkPatch) (models.Work, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	w, ok := s.db.works[id]
	if !ok {
		return models.Work{}, repository.ErrWorkNotFound
	}
	if patch.Title != nil {
		w.Title = *patch.Title
	}
	if patch.Description != nil {
		w.Description = *patch.Description
	}
	if patch.Measures != nil {
		w.Measures = *patch.Measures
	}
	if patch.CategoryID != nil {
		categoryID := *patch.CategoryID
		if categoryID == 0 {
			w.Category = nil
		} else {
			if _, ok := s.db.categories[categoryID]; !ok {
				return models.Work{}, repository.ErrCategoryNotFound
			}
			w.Category = &models.Category{ID: categoryID}
		}
	}
	if patch.Priority != nil {
		w.Priority = *patch.Priority
	}
	if patch.Status != nil {
		w.Status = *patch.Status
	}
	if patch.EndDate != nil {
		w.EndDate = patch.EndDate
	}
	if patch.Price != nil {
		w.Price = *patch.Price
	}
	if patch.FinalPrice != nil {
		w.FinalPrice = patch.FinalPrice
	}
	if patch.MarketingTitle != nil {
		w.MarketingTitle = patch.MarketingTitle
	}
	if patch.MarketingDescription != nil {
		w.MarketingDescription = patch.MarketingDescription
	}
	s.db.works[id] = w
	return s.resolve(w), nil
}

func (s *MemoryWorks) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.works[id]; !ok {
		return repository.ErrWorkNotFound
	}
	delete(s.db.works, id)
	for imgID, img := range s.db.images {
		if img.WorkID == id {
			delete(s.db.images, imgID)
		}
	}
	return nil
}

// resolve fills the category name the way the LEFT JOIN does. Callers hold
// the lock.
func (s *MemoryWorks) resolve(w models.Work) models.Work {
	if w.Category != nil {
		c := s.db.categories[w.Category.ID]
		w.Category = &c
	}
	w.Images = []models.WorkImage{}
	return w
}

type MemoryImages struct{ db *MemoryDB }

func (s *MemoryImages) CreateBatch(_ context.Context, workID int64, images []models.WorkImage) ([]models.WorkImage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.db.ImageInsertErr; err != nil {
		s.db.ImageInsertErr = nil
		return nil, err
	}
	if _, ok := s.db.works[workID]; !ok {
		return nil, repository.ErrWorkNotFound
	}

	maxOrder := 0
	for _, img := range s.db.images {
		if img.WorkID == workID && img.Order > maxOrder {
			maxOrder = img.Order
		}
	}

	saved := make([]models.WorkImage, 0, len(images))
	for i, img := range images {
		img.ID = s.db.nextID()
		img.WorkID = workID
		img.Order = maxOrder + i + 1
		img.UploadedAt = time.Now().UTC()
		img.Data = slices.Clone(img.Data)
		s.db.images[img.ID] = img

		img.Data = nil
		saved = append(saved, img)
	}
	return saved, nil
}

func (s *MemoryImages) ListByWork(ctx context.Context, workID int64) ([]models.WorkImage, error) {
	byWork, _ := s.ListByWorks(ctx, []int64{workID})
	if images, ok := byWork[workID]; ok {
		return images, nil
	}
	return []models.WorkImage{}, nil
}

func (s *MemoryImages) ListByWorks(_ context.Context, workIDs []int64) (map[int64][]models.WorkImage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make(map[int64][]models.WorkImage)
	for _, img := range s.db.images {
		if slices.Contains(workIDs, img.WorkID) {
			img.Data = nil
			img.ObjectKey = nil
			out[img.WorkID] = append(out[img.WorkID], img)
		}
	}
	for _, images := range out {
		slices.SortFunc(images, func(a, b models.WorkImage) int {
			if a.Order != b.Order {
				return a.Order - b.Order
			}
			return int(a.ID - b.ID)
		})
	}
	return out, nil
}

func (s *MemoryImages) Get(_ context.Context, id int64) (models.WorkImage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	img, ok := s.db.images[id]
	if !ok {
		return models.WorkImage{}, repository.ErrImageNotFound
	}
	img.Data = slices.Clone(img.Data)
	return img, nil
}

func (s *MemoryImages) Delete(_ context.Context, id int64) (models.WorkImage, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	img, ok := s.db.images[id]
	if !ok {
		return models.WorkImage{}, repository.ErrImageNotFound
	}
	delete(s.db.images, id)
	return models.WorkImage{ID: img.ID, WorkID: img.WorkID, ObjectKey: img.ObjectKey}, nil
}

func (s *MemoryImages) ObjectKeysByWork(_ context.Context, workID int64) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var keys []string
	for _, img := range s.db.images {
		if img.WorkID == workID && img.ObjectKey != nil {
			keys = append(keys, *img.ObjectKey)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// MemoryBlobs is an object store kept in a map.
type MemoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr, when set, fails every Put.
	PutErr error
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{objects: make(map[string][]byte)}
}

func (b *MemoryBlobs) Put(_ context.Context, key, _ string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.PutErr != nil {
		return b.PutErr
	}
	b.objects[key] = slices.Clone(data)
	return nil
}

func (b *MemoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return slices.Clone(data), nil
}

func (b *MemoryBlobs) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *MemoryBlobs) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
