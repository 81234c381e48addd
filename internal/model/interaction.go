package model

import "time"

type ResponseType string

const (
	ResponseTypeRAG          ResponseType = "RAG"
	ResponseTypeFunctionCall ResponseType = "FUNCTION_CALL"
	ResponseTypeText         ResponseType = "TEXT"
)

func (t ResponseType) Valid() bool {
	switch t {
	case ResponseTypeRAG, ResponseTypeFunctionCall, ResponseTypeText:
		return true
	}
	return false
}

type RagInteraction struct {
	BaseModel
	Timestamp       time.Time    `gorm:"not null;index" json:"timestamp"`
	UserID          string       `gorm:"size:255;not null;index" json:"user_id"`
	UserQuery       string       `gorm:"type:text;not null" json:"user_query"`
	ResponseType    ResponseType `gorm:"size:20;not null" json:"response_type"`
	ResponseContent string       `gorm:"type:text" json:"response_content"`
	Sources         StringArray  `gorm:"type:text" json:"sources"`
	Success         bool         `gorm:"not null" json:"success"`
}

func (RagInteraction) TableName() string {
	return "rag_interactions"
}
