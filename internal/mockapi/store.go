package mockapi

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id           int64
	username     string
	firstName    string
	lastName     string
	email        string
	passwordHash []byte
}

type taskItem struct {
	id          int64
	description string
	completed   bool
}

type taskList struct {
	id            int64
	title         string
	owner         string
	collaborators []string
	tasks         []taskItem
}

// memoryDB is the in-process backing store of the fake backend
type memoryDB struct {
	mu         sync.RWMutex
	cost       int
	users      map[string]*user // lower-cased username
	lists      map[int64]*taskList
	nextUserID int64
	nextListID int64
	nextTaskID int64
}

func newMemoryDB(cost int) *memoryDB {
	return &memoryDB{
		cost:  cost,
		users: make(map[string]*user),
		lists: make(map[int64]*taskList),
	}
}

func (db *memoryDB) createUser(req registerRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), db.cost)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.users[strings.ToLower(req.Username)]; exists {
		return errUsernameTaken
	}
	for _, u := range db.users {
		if strings.EqualFold(u.email, req.Email) {
			return errEmailTaken
		}
	}
	db.nextUserID++
	db.users[strings.ToLower(req.Username)] = &user{
		id:           db.nextUserID,
		username:     req.Username,
		firstName:    req.FirstName,
		lastName:     req.LastName,
		email:        req.Email,
		passwordHash: hash,
	}
	return nil
}

// authenticate returns the canonical username for valid credentials
func (db *memoryDB) authenticate(username, password string) (string, error) {
	db.mu.RLock()
	u, ok := db.users[strings.ToLower(username)]
	db.mu.RUnlock()
	if !ok {
		return "", errUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return "", errBadPassword
	}
	return u.username, nil
}

func (db *memoryDB) user(username string) (user, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	u, ok := db.users[strings.ToLower(username)]
	if !ok {
		return user{}, false
	}
	return *u, true
}

// deleteUser removes the account, its lists, and its collaborations
func (db *memoryDB) deleteUser(username string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	key := strings.ToLower(username)
	if _, ok := db.users[key]; !ok {
		return false
	}
	delete(db.users, key)
	for id, l := range db.lists {
		if strings.EqualFold(l.owner, username) {
			delete(db.lists, id)
			continue
		}
		kept := l.collaborators[:0]
		for _, c := range l.collaborators {
			if !strings.EqualFold(c, username) {
				kept = append(kept, c)
			}
		}
		l.collaborators = kept
	}
	return true
}

func (db *memoryDB) createList(owner, title string, collaborators []string) taskList {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextListID++
	l := &taskList{
		id:            db.nextListID,
		title:         title,
		owner:         owner,
		collaborators: append([]string(nil), collaborators...),
	}
	db.lists[l.id] = l
	return *l
}

func (db *memoryDB) addTask(listID int64, description string, completed bool) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.lists[listID]
	if !ok {
		return false
	}
	db.nextTaskID++
	l.tasks = append(l.tasks, taskItem{id: db.nextTaskID, description: description, completed: completed})
	return true
}

// listsFor returns lists owned by or shared with username, ordered by id
func (db *memoryDB) listsFor(username string) []taskList {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var out []taskList
	for _, l := range db.lists {
		if l.isMember(username) {
			out = append(out, l.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (db *memoryDB) list(username string, id int64) (taskList, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	l, ok := db.lists[id]
	if !ok {
		return taskList{}, errListNotFound
	}
	if !l.isMember(username) {
		return taskList{}, errNotMember
	}
	return l.snapshot(), nil
}

func (l *taskList) isMember(username string) bool {
	if strings.EqualFold(l.owner, username) {
		return true
	}
	for _, c := range l.collaborators {
		if strings.EqualFold(c, username) {
			return true
		}
	}
	return false
}

func (l *taskList) snapshot() taskList {
	cp := *l
	cp.collaborators = append([]string(nil), l.collaborators...)
	cp.tasks = append([]taskItem(nil), l.tasks...)
	return cp
}
