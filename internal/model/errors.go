package model

import "errors"

// Сентинельные ошибки доменного уровня. Обработчики HTTP транслируют их в статусы.
var (
	// ErrNotFound - запись не найдена в хранилище
	ErrNotFound = errors.New("запись не найдена")
	// ErrStoryClosed - история закрыта, новые главы не генерируются
	ErrStoryClosed = errors.New("история закрыта для продолжения")
	// ErrOptionNotFound - у главы нет варианта с таким порядковым номером
	ErrOptionNotFound = errors.New("вариант продолжения не найден")
	// ErrChapterNotFound - глава не принадлежит истории или удалена
	ErrChapterNotFound = errors.New("глава не найдена")
	// ErrUnknownPersonality - неизвестный профиль автора для автописьма
	ErrUnknownPersonality = errors.New("неизвестный профиль автора")
)
