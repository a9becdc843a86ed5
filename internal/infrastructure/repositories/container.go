package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/scmforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/scmforge/internal/domain/repositories"
	accurevRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/accurev"
	bzrRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/bazaar"
	clearcaseRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/clearcase"
	cvsRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/cvs"
	gitRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/git"
	gogitRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/gogit"
	hgRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/hg"
	integrityRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/integrity"
	jazzRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/jazz"
	localRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/local"
	p4Repo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/perforce"
	"github.com/rios0rios0/scmforge/internal/infrastructure/repositories/process"
	starteamRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/starteam"
	svnRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/svn"
	synergyRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/synergy"
	tfsRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/tfs"
	vssRepo "github.com/rios0rios0/scmforge/internal/infrastructure/repositories/vss"
)

// NewDefaultProviderRegistry registers every built-in backend.
func NewDefaultProviderRegistry() *ProviderRegistry {
	reg := NewProviderRegistry()
	reg.Register(entities.ProviderCVS, wrap(cvsRepo.NewProvider))
	reg.Register(entities.ProviderSVN, wrap(svnRepo.NewProvider))
	reg.Register(entities.ProviderGit, wrap(gitRepo.NewProvider))
	reg.Register(entities.ProviderGoGit, wrap(gogitRepo.NewProvider))
	reg.Register(entities.ProviderHg, wrap(hgRepo.NewProvider))
	reg.Register(entities.ProviderBazaar, wrap(bzrRepo.NewProvider))
	reg.Register(entities.ProviderPerforce, wrap(p4Repo.NewProvider))
	reg.Register(entities.ProviderClearCase, wrap(clearcaseRepo.NewProvider))
	reg.Register(entities.ProviderStarteam, wrap(starteamRepo.NewProvider))
	reg.Register(entities.ProviderAccuRev, wrap(accurevRepo.NewProvider))
	reg.Register(entities.ProviderVSS, wrap(vssRepo.NewProvider))
	reg.Register(entities.ProviderJazz, wrap(jazzRepo.NewProvider))
	reg.Register(entities.ProviderIntegrity, wrap(integrityRepo.NewProvider))
	reg.Register(entities.ProviderSynergy, wrap(synergyRepo.NewProvider))
	reg.Register(entities.ProviderTFS, wrap(tfsRepo.NewProvider))
	reg.Register(entities.ProviderLocal, wrap(localRepo.NewProvider))
	return reg
}

func wrap[T domainRepos.ScmProvider](constructor func(*entities.Settings) T) ProviderFactory {
	return func(settings *entities.Settings) domainRepos.ScmProvider {
		return constructor(settings)
	}
}

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewDefaultProviderRegistry); err != nil {
		return err
	}
	if err := container.Provide(process.NewRunnerFactory); err != nil {
		return err
	}
	return nil
}
