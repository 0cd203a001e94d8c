// file: internals/features/forms/approvals/service/engine.go
package service

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
	delegationService "github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
)

// Engine bundles the approval resolver, the status aggregator and the pending view.
type Engine struct {
	DB        *gorm.DB
	Directory *unitService.Directory
	Registry  *delegationService.Registry
	Workflows *templateService.Workflows
	Now       func() time.Time
	log       *zap.Logger
}

func NewEngine(db *gorm.DB, dir *unitService.Directory, reg *delegationService.Registry, wf *templateService.Workflows) *Engine {
	return &Engine{
		DB:        db,
		Directory: dir,
		Registry:  reg,
		Workflows: wf,
		Now:       time.Now,
		log:       zap.L().Named("approvals"),
	}
}

// WithTx binds the engine and its collaborators to tx.
func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	cp := *e
	cp.DB = tx
	cp.Directory = e.Directory.WithTx(tx)
	cp.Registry = e.Registry.WithTx(tx)
	cp.Workflows = e.Workflows.WithTx(tx)
	return &cp
}
