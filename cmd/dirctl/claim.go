package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"halal-directory/internal/domain"
	"halal-directory/internal/repository"
)

type ClaimCmd struct {
	Inspect ClaimInspectCmd `cmd:"" help:"Show the claim behind a verification token"`
}

type ClaimInspectCmd struct {
	Token string `required:"" help:"Verification token from the emailed link"`
}

func (c *ClaimInspectCmd) Run(ctx *Context) error {
	db, err := ctx.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	claim, err := repository.NewClaimRepository(db.DB()).FindByToken(context.Background(), c.Token)
	if err != nil {
		return err
	}

	return printClaim(ctx, claim)
}

func printClaim(ctx *Context, claim *domain.BusinessClaim) error {
	proof := "-"
	if claim.ProofURL != nil {
		proof = *claim.ProofURL
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "claim\t%d\n", claim.ID)
	fmt.Fprintf(tw, "service\t%d\n", claim.ServiceID)
	fmt.Fprintf(tw, "status\t%s\n", claim.Status)
	fmt.Fprintf(tw, "claimant\t%s <%s>\n", claim.ClaimantName, claim.ClaimantEmail)
	fmt.Fprintf(tw, "phone\t%s\n", claim.ClaimantPhone)
	fmt.Fprintf(tw, "position\t%s\n", claim.Position)
	fmt.Fprintf(tw, "user\t%s\n", claim.ClaimantUserID)
	fmt.Fprintf(tw, "proof\t%s\n", proof)
	fmt.Fprintf(tw, "requested\t%s\n", claim.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return tw.Flush()
}
