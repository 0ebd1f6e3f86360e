package device

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"enatega_storefront/internal/model"
)

// Storage is the device's persistent key-value store, keyed by plain strings.
type Storage struct {
	db *badger.DB
}

// OpenStorage opens a store in dir. An empty dir keeps everything in memory.
func OpenStorage(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open device storage: %w", err)
	}
	return &Storage{db: db}, nil
}

// GetItem returns the value stored under key. found=false when absent.
func (s *Storage) GetItem(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(value), true, nil
}

// SetItem stores value under key.
func (s *Storage) SetItem(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *Storage) RemoveItem(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close flushes and closes the store.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SelectedLanguage returns the language stored under model.LanguageStorageKey,
// falling back to the default for a missing or unsupported code.
func SelectedLanguage(s *Storage) (model.Language, error) {
	def, _ := model.LookupLanguage(model.DefaultLanguageCode)

	code, found, err := s.GetItem(model.LanguageStorageKey)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	if lang, ok := model.LookupLanguage(code); ok {
		return lang, nil
	}
	return def, nil
}

// SelectLanguage stores a supported language code under model.LanguageStorageKey.
func SelectLanguage(s *Storage, code string) (model.Language, error) {
	lang, ok := model.LookupLanguage(code)
	if !ok {
		return model.Language{}, model.ErrUnsupportedLanguage
	}
	if err := s.SetItem(model.LanguageStorageKey, lang.Code); err != nil {
		return model.Language{}, err
	}
	return lang, nil
}
