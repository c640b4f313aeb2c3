package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/widget-dashboard/infra/cloudrun"
	"github.com/GregMSThompson/widget-dashboard/infra/docker"
	"github.com/GregMSThompson/widget-dashboard/infra/firestore"
	"github.com/GregMSThompson/widget-dashboard/infra/identity"
	"github.com/GregMSThompson/widget-dashboard/infra/kms"
	"github.com/GregMSThompson/widget-dashboard/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the widget store
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// key used to seal the plugin gateway token
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyName, err := kms.CreateKey(ctx, prov, "widget-dashboard", "gateway-token")
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, keyName, ident, repo, kmsSvc)
		if err != nil {
			return err
		}

		return nil
	})
}
