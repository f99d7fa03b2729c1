package main

// IsAdmin сообщает, входит ли пользователь в список админов.
func (s *Store) IsAdmin(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.doc.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// Admins возвращает копию списка админов в порядке добавления.
func (s *Store) Admins() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, len(s.doc.Admins))
	copy(out, s.doc.Admins)
	return out
}

// AddAdmin добавляет target в админы от имени acting.
func (s *Store) AddAdmin(acting, target int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdminLocked(acting) {
		return ErrNotAuthorized
	}
	if s.isAdminLocked(target) {
		return ErrAlreadyAdmin
	}
	s.doc.Admins = append(s.doc.Admins, target)
	return s.save()
}

// RemoveAdmin удаляет target из админов от имени acting. Удаление самого
// себя запрещено всегда — это единственная гарантия того, что список
// админов не опустеет.
func (s *Store) RemoveAdmin(acting, target int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdminLocked(acting) {
		return ErrNotAuthorized
	}
	if !s.isAdminLocked(target) {
		return ErrNotAdmin
	}
	if target == acting {
		return ErrSelfRemoval
	}
	for i, id := range s.doc.Admins {
		if id == target {
			s.doc.Admins = append(s.doc.Admins[:i], s.doc.Admins[i+1:]...)
			break
		}
	}
	return s.save()
}

func (s *Store) isAdminLocked(userID int64) bool {
	for _, id := range s.doc.Admins {
		if id == userID {
			return true
		}
	}
	return false
}
