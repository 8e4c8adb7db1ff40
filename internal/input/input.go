// Package input предоставляет ввод текста в активное поле.
package input

import (
	"errors"
	"sync"
)

// ErrUnsupported возвращается на платформах без ввода текста.
var ErrUnsupported = errors.New("input: not supported on this platform")

// TextAction вводит и стирает текст в текущем активном поле.
type TextAction interface {
	// Insert вводит текст в позицию курсора.
	Insert(text string) error
	// DeleteChars стирает count символов перед курсором.
	DeleteChars(count int) error
}

// Inserter - потокобезопасная обёртка над платформенным TextAction.
// Логики здесь нет: только сериализация вызовов.
type Inserter struct {
	mu     sync.Mutex
	action TextAction
}

// New создаёт Inserter с платформо-специфичной реализацией.
func New() (*Inserter, error) {
	action, err := newTextAction()
	if err != nil {
		return nil, err
	}
	return NewWith(action), nil
}

// NewWith создаёт Inserter над заданной реализацией.
func NewWith(action TextAction) *Inserter {
	return &Inserter{action: action}
}

// Insert вводит текст. Пустая строка ничего не делает.
func (i *Inserter) Insert(text string) error {
	if text == "" {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.action.Insert(text)
}

// DeleteChars стирает count символов. count <= 0 ничего не делает.
func (i *Inserter) DeleteChars(count int) error {
	if count <= 0 {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.action.DeleteChars(count)
}
