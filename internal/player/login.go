package player

import (
	"fmt"
	"strings"
)

const maxPasswordTries = 3

type loginFlow struct {
	accounts *Accounts
}

func (f *loginFlow) Run(c *TextConn) (*Account, error) {
	if err := c.write("Welcome to Grow a Garden!\n"); err != nil {
		return nil, err
	}

	for {
		username, err := c.Prompt("By what name do you wish to be known? ",
			WithValidator(func(str string) (bool, string) {
				if !ValidUsername(str) {
					return false, "Invalid name, please try another.\n"
				}
				return true, ""
			}),
		)
		if err != nil {
			return nil, err
		}

		acct, err := f.accounts.Lookup(username)
		if err != nil {
			return nil, err
		}

		if acct == nil {
			acct, err = f.newAccount(c, username)
			if err != nil {
				return nil, err
			}
			if acct == nil {
				continue
			}
			return acct, nil
		}

		_, err = c.Prompt("Password: ", WithMaxTries(maxPasswordTries), WithValidator(
			func(str string) (bool, string) {
				if acct.CheckPassword(str) != nil {
					return false, "Wrong password.\n"
				}
				return true, ""
			},
		))
		if err != nil {
			return nil, err
		}

		return acct, nil
	}
}

func (f *loginFlow) newAccount(c *TextConn, username string) (*Account, error) {
	ok, err := c.PromptYN(fmt.Sprintf("Did I get that right, %s (Y/N)? ", username))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	for {
		passOne, err := c.Prompt(fmt.Sprintf("Give me a password for %s: ", username), WithValidator(
			func(str string) (bool, string) {
				if len(str) == 0 || strings.EqualFold(str, username) {
					return false, "Illegal password.\n"
				}
				return true, ""
			},
		))
		if err != nil {
			return nil, err
		}

		passTwo, err := c.Prompt("Please retype password: ")
		if err != nil {
			return nil, err
		}

		if passOne != passTwo {
			if err := c.write("Passwords don't match... start over.\n"); err != nil {
				return nil, err
			}
			continue
		}

		return f.accounts.Create(username, passOne)
	}
}
